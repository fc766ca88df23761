package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/ghgfreight/internal/config"
	"github.com/rshade/ghgfreight/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// annotationSkipValidate marks commands that must run with an invalid
// configuration, such as the commands that create or check it.
const annotationSkipValidate = "ghgfreight/skip-validate"

type configKey struct{}

// withConfig attaches the resolved configuration to ctx.
func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFrom returns the configuration resolved for this invocation, or the
// defaults when the root pre-run did not execute.
func configFrom(cmd *cobra.Command) *config.Config {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
			return cfg
		}
	}
	return config.New()
}

// NewRootCmd creates the root Cobra command for the ghgfreight CLI.
// It wires up configuration, logging, and tracing before any subcommand
// runs.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit environment
// lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:     "ghgfreight",
		Short:   "Freight greenhouse gas emissions calculator",
		Long:    "ghgfreight: Calculate CO2 and CH4 emissions of freight activity and container manufacturing",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, lookupEnv)
			if err != nil {
				return err
			}

			result := setupLogging(cmd, cfg)
			logResult = &result
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $GHGFREIGHT_HOME/config.yaml)")
	cmd.PersistentFlags().String("config-overlay", "", "YAML file whose sections replace those of the config file")
	cmd.PersistentFlags().String("data-dir", "", "reference dataset directory (overrides config and environment)")

	cmd.AddCommand(
		NewComputeCmd(), NewConvertCmd(), NewFactorCmd(), NewManufacturingCmd(),
		NewLookupCmd(), NewServeCmd(), newConfigCmd(),
	)

	return cmd
}

// resolveConfig layers the config file, overlay, environment, and flags and
// validates the result unless the command opts out.
func resolveConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	overlay, _ := cmd.Flags().GetString("config-overlay")

	cfg, err := config.Resolve(path, overlay, lookupEnv)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Reference.DataDir = dataDir
	}

	if cmd.Annotations[annotationSkipValidate] == "" {
		if err = cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

const rootCmdExample = `  # Compute emissions for a JSON compute request
  ghgfreight compute request.json

  # Compute emissions for a CSV activity file and show per-row results
  ghgfreight compute activity.csv --details

  # Convert between units using the reference conversion matrix
  ghgfreight convert kg "Metric Ton" 2500

  # Resolve a freight emission factor
  ghgfreight factor --vehicle "Rail" --region US --unit "Tonne Mile"

  # Compute container manufacturing emissions
  ghgfreight manufacturing --key "Acme - Pallet Box - Shenzhen" --weight 25000 --count 40

  # Serve the HTTP API
  ghgfreight serve --address 127.0.0.1:5002

  # Initialize configuration
  ghgfreight config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd(), NewConfigShowCmd())
	return cmd
}
