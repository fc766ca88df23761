package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the user configuration file.
const ConfigFileName = "config.yaml"

// GetConfigDir returns the ghgfreight configuration directory: $GHGFREIGHT_HOME
// when set, otherwise ~/.ghgfreight.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ghgfreight"), nil
}

// DefaultConfigPath returns the path of the user configuration file.
func DefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// EnsureConfigDir ensures the configuration directory exists.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// Resolve builds the effective configuration for one invocation: defaults,
// then the file at path (the user config file when path is empty), then
// the overlay file when set, then environment overrides.
func Resolve(path, overlay string, lookup LookupFunc) (*Config, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if overlay != "" {
		if err = ShallowMergeYAML(cfg, overlay); err != nil {
			return nil, err
		}
	}
	if err = cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}
