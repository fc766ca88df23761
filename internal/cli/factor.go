package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/reference"
)

const tabwriterPadding = 2

// factorParams holds the flags of the factor command.
type factorParams struct {
	vehicle   string
	fuel      string
	region    string
	unit      string
	pollutant string
	format    string
}

// NewFactorCmd creates the factor command, which resolves one emission
// factor and shows every conversion step applied to it.
func NewFactorCmd() *cobra.Command {
	var params factorParams

	cmd := &cobra.Command{
		Use:   "factor",
		Short: "Resolve an emission factor",
		Long: `Resolves the emission factor for a vehicle (distance activity) or a fuel
(fuel-use activity) in a region, and normalizes it to metric tonnes of pollutant
per activity unit.

Without --pollutant every configured pollutant is resolved.`,
		Example: `  # Freight factor per tonne-mile
  ghgfreight factor --vehicle Rail --region US --unit "Tonne Mile"

  # Fuel factor per gallon, CO2 only
  ghgfreight factor --fuel Diesel --region US --unit Gallons --pollutant CO2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFactor(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.vehicle, "vehicle", "", "vehicle type and size from the freight table")
	cmd.Flags().StringVar(&params.fuel, "fuel", "", "fuel name from the fuel-use tables")
	cmd.Flags().StringVar(&params.region, "region", "", "region (required)")
	cmd.Flags().StringVar(&params.unit, "unit", "", "activity unit the factor is normalized to")
	cmd.Flags().StringVar(&params.pollutant, "pollutant", "", "CO2 or CH4 (default: configured pollutants)")
	cmd.Flags().StringVarP(&params.format, "output", "o", engine.FormatTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("region")
	cmd.MarkFlagsMutuallyExclusive("vehicle", "fuel")
	cmd.MarkFlagsOneRequired("vehicle", "fuel")

	return cmd
}

func runFactor(cmd *cobra.Command, params factorParams) error {
	ctx := cmd.Context()
	cfg := configFrom(cmd)

	pollutants, err := cfg.PollutantList()
	if err != nil {
		return err
	}
	if params.pollutant != "" {
		p, parseErr := reference.ParsePollutant(params.pollutant)
		if parseErr != nil {
			return parseErr
		}
		pollutants = []reference.Pollutant{p}
	}

	svc, err := loadService(ctx, cfg, nil)
	if err != nil {
		return err
	}

	resolutions := make([]engine.Resolution, 0, len(pollutants))
	for _, p := range pollutants {
		resolutions = append(resolutions,
			svc.ResolveFactor(ctx, p, params.vehicle, params.fuel, params.region, params.unit))
	}

	switch params.format {
	case engine.FormatJSON:
		return writeIndentedJSON(cmd.OutOrStdout(), resolutions)
	case "", engine.FormatTable:
		return renderResolutions(cmd.OutOrStdout(), resolutions)
	default:
		return fmt.Errorf("unsupported output format %q", params.format)
	}
}

// renderResolutions writes one line per resolved factor.
func renderResolutions(w io.Writer, resolutions []engine.Resolution) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	if _, err := fmt.Fprintf(tw, "GAS\tKEY\tREGION\tRAW\tNUMERATOR\tDENOMINATOR\tFACTOR (t/unit)\tSTATUS\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	var notes []string
	for _, r := range resolutions {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%s\t%s\t%g\t%s\n",
			r.Pollutant, r.Key, r.Region, r.RawFactor,
			orDash(r.Numerator), orDash(r.Denominator), r.Factor,
			engine.StatusIcon(r.Status)+" "+r.Status.String(),
		); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
		if r.Message != "" {
			notes = append(notes, fmt.Sprintf("%s: %s", r.Pollutant, r.Message))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, n := range notes {
		if _, err := fmt.Fprintf(w, "note: %s\n", n); err != nil {
			return err
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
