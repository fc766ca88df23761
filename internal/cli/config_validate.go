package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/ghgfreight/internal/config"
	"github.com/rshade/ghgfreight/internal/reference"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and reference dataset",
		Long: `Validates the effective configuration (config file, overlay, and
GHGFREIGHT_* environment overrides) and loads the reference dataset it points to.

This includes:
- Numeric ranges for concurrency, batch size, and precision
- Output and logging formats
- Pollutant names
- Presence and parseability of every required reference table
- The dataset manifest version against reference.version_constraint`,
		Example: `  # Validate current configuration
  ghgfreight config validate

  # Validate and show detailed information
  ghgfreight config validate --verbose`,
		Annotations: map[string]string{annotationSkipValidate: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := configFrom(cmd)

	if err := cfg.Validate(); err != nil {
		cmd.PrintErrln("Configuration errors:")
		for _, e := range unwrapJoined(err) {
			cmd.PrintErrf("  - %s\n", e.Error())
		}
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ds, err := reference.LoadDataset(cmd.Context(), cfg.LoadOptions())
	if err != nil {
		return fmt.Errorf("reference dataset validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg, ds)
	}

	return nil
}

// unwrapJoined splits an errors.Join result into its parts.
func unwrapJoined(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config, ds *reference.Dataset) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Data directory: %s\n", cfg.Reference.DataDir)
	cmd.Printf("  Pollutants: %s\n", strings.Join(cfg.Calculation.Pollutants, ", "))
	cmd.Printf("  Concurrency: %d (batch size %d)\n", cfg.Calculation.Concurrency, cfg.Calculation.BatchSize)
	cmd.Printf("  Fallback manufacturing factor: %g\n", cfg.Calculation.FallbackManufacturingFactor)
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	cmd.Printf("  Server address: %s\n", cfg.Server.Address)

	printDatasetDetails(cmd, ds)
}

// printDatasetDetails prints the loaded reference tables.
func printDatasetDetails(cmd *cobra.Command, ds *reference.Dataset) {
	cmd.Println()
	cmd.Println("Reference dataset:")
	if ds.Manifest != nil {
		cmd.Printf("  Version: %s\n", ds.Manifest.Version)
		if ds.Manifest.Source != "" {
			cmd.Printf("  Source: %s\n", ds.Manifest.Source)
		}
	} else {
		cmd.Println("  No manifest (version unknown)")
	}
	cmd.Printf("  Unit conversions: %d (%d source units, %d target units)\n",
		ds.Units.Len(), len(ds.Units.FromUnits()), len(ds.Units.ToUnits()))
	cmd.Printf("  Fuel CO2 factors: %d\n", ds.FuelCO2.Len())
	cmd.Printf("  Fuel CH4 factors: %d\n", ds.FuelCH4.Len())
	cmd.Printf("  Freight factors: %d\n", ds.Vehicles.Len())
	cmd.Printf("  Product factors: %d\n", ds.Products.Len())
	cmd.Printf("  Suppliers: %d\n", len(ds.Suppliers))
}

// NewConfigShowCmd creates the config show command, which prints the
// effective configuration as YAML.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration",
		Annotations: map[string]string{annotationSkipValidate: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(configFrom(cmd))
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
