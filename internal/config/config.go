// Package config holds the ghgfreight runtime configuration: where the
// reference dataset lives, how calculations run, output defaults, logging,
// and the HTTP server.
//
// Configuration is layered. New returns defaults, Load decodes a YAML file
// over them, ShallowMergeYAML replaces whole sections from an overlay file,
// and ApplyEnv applies GHGFREIGHT_* environment overrides last.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/reference"
)

// Defaults.
const (
	DefaultDataDir       = "data"
	DefaultConcurrency   = 4
	DefaultBatchSize     = 100
	DefaultOutputFormat  = engine.FormatTable
	DefaultPrecision     = engine.DefaultPrecision
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultServerAddress = "127.0.0.1:5002"
	DefaultReadTimeout   = 15 * time.Second
	DefaultWriteTimeout  = 30 * time.Second
	DefaultIdleTimeout   = 60 * time.Second
	maxPrecision         = 12
	outputTypeFile       = "file"
)

type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidConfig is wrapped by every Validate failure.
const ErrInvalidConfig constError = "invalid configuration"

// Config is the complete runtime configuration.
type Config struct {
	Reference   ReferenceConfig   `yaml:"reference"`
	Calculation CalculationConfig `yaml:"calculation"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Server      ServerConfig      `yaml:"server"`
}

// ReferenceConfig locates the reference dataset.
type ReferenceConfig struct {
	DataDir string          `yaml:"data_dir"`
	Files   reference.Files `yaml:"files,omitempty"`
	// VersionConstraint is a semver constraint checked against the dataset
	// manifest, e.g. ">= 2024.1.0".
	VersionConstraint string `yaml:"version_constraint,omitempty"`
}

// CalculationConfig controls the engine.
type CalculationConfig struct {
	Concurrency                 int      `yaml:"concurrency"`
	BatchSize                   int      `yaml:"batch_size"`
	FallbackManufacturingFactor float64  `yaml:"fallback_manufacturing_factor"`
	Pollutants                  []string `yaml:"pollutants"`
}

// OutputConfig sets CLI output defaults.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig sets the log level, format, and optional file.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins,omitempty"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Reference: ReferenceConfig{
			DataDir: DefaultDataDir,
			Files:   reference.DefaultFiles(),
		},
		Calculation: CalculationConfig{
			Concurrency:                 DefaultConcurrency,
			BatchSize:                   DefaultBatchSize,
			FallbackManufacturingFactor: engine.DefaultFallbackFactor,
			Pollutants:                  []string{string(reference.CO2), string(reference.CH4)},
		},
		Output: OutputConfig{
			DefaultFormat: DefaultOutputFormat,
			Precision:     DefaultPrecision,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Server: ServerConfig{
			Address:      DefaultServerAddress,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
	}
}

// Load decodes the YAML file at path over the defaults. Fields absent from
// the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns defaults when path does not
// exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return New(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return Load(path)
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting, each wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(c.Reference.DataDir) == "" {
		add("reference.data_dir is required")
	}
	if c.Calculation.Concurrency < 1 {
		add("calculation.concurrency must be at least 1, got %d", c.Calculation.Concurrency)
	}
	if c.Calculation.BatchSize < 1 || c.Calculation.BatchSize > 1000 {
		add("calculation.batch_size must be between 1 and 1000, got %d", c.Calculation.BatchSize)
	}
	if c.Calculation.FallbackManufacturingFactor < 0 {
		add("calculation.fallback_manufacturing_factor must not be negative")
	}
	if _, err := c.PollutantList(); err != nil {
		add("calculation.pollutants: %v", err)
	}
	if !slices.Contains([]string{engine.FormatTable, engine.FormatJSON, engine.FormatNDJSON}, c.Output.DefaultFormat) {
		add("output.default_format must be table, json, or ndjson, got %q", c.Output.DefaultFormat)
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		add("output.precision must be between 0 and %d, got %d", maxPrecision, c.Output.Precision)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		add("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		add("server.address is required")
	}

	return errors.Join(errs...)
}

// PollutantList parses Calculation.Pollutants.
func (c *Config) PollutantList() ([]reference.Pollutant, error) {
	if len(c.Calculation.Pollutants) == 0 {
		return append([]reference.Pollutant(nil), reference.Pollutants...), nil
	}
	out := make([]reference.Pollutant, 0, len(c.Calculation.Pollutants))
	for _, name := range c.Calculation.Pollutants {
		p, err := reference.ParsePollutant(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// LoadOptions converts the reference section into dataset load options.
func (c *Config) LoadOptions() reference.LoadOptions {
	return reference.LoadOptions{
		DataDir:           c.Reference.DataDir,
		Files:             c.Reference.Files,
		VersionConstraint: c.Reference.VersionConstraint,
	}
}
