package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgfreight/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// The file is written to --config when given, otherwise to
// $GHGFREIGHT_HOME/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

The file is written to $GHGFREIGHT_HOME/config.yaml (~/.ghgfreight/config.yaml
when GHGFREIGHT_HOME is unset) unless --config names another path.`,
		Example: `  # Create the user configuration
  ghgfreight config init

  # Create configuration, overwriting existing
  ghgfreight config init --force`,
		Annotations: map[string]string{annotationSkipValidate: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				if err := config.EnsureConfigDir(); err != nil {
					return fmt.Errorf("creating config directory: %w", err)
				}
				p, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			return initConfig(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

// initConfig writes the default configuration to path.
func initConfig(cmd *cobra.Command, path string, force bool) error {
	// Check if config already exists and force isn't set
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	if err := config.New().Save(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logger.Info().Ctx(cmd.Context()).Str("path", path).Msg("configuration initialized")
	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", path)

	return nil
}
