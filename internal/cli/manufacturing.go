package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/greenops"
)

// manufacturingParams holds the flags of the manufacturing command.
type manufacturingParams struct {
	key      string
	supplier string
	product  string
	location string
	weight   float64
	count    int
	factor   float64
	format   string
}

// NewManufacturingCmd creates the manufacturing command, which computes the
// emissions embodied in a supplier's containers.
func NewManufacturingCmd() *cobra.Command {
	var params manufacturingParams

	cmd := &cobra.Command{
		Use:     "manufacturing",
		Aliases: []string{"mfg"},
		Short:   "Compute container manufacturing emissions",
		Long: `Computes the emissions embodied in count containers of the given unit mass.

The factor is taken from the source product matrix when the key is listed there.
Otherwise --factor is used, and without it the configured fallback factor.
The key is given with --key or composed from --supplier, --product, and --location.`,
		Example: `  # Matrix lookup by key
  ghgfreight manufacturing --key "Acme - Pallet Box - Shenzhen" --weight 25000 --count 40

  # Composed key with a supplier-provided factor
  ghgfreight manufacturing --supplier Initech --product Crate --location Austin \
    --weight 12000 --count 10 --factor 1.8`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runManufacturing(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.key, "key", "", "product matrix key (Supplier - Product - Location)")
	cmd.Flags().StringVar(&params.supplier, "supplier", "", "supplier name")
	cmd.Flags().StringVar(&params.product, "product", "", "container product")
	cmd.Flags().StringVar(&params.location, "location", "", "manufacturing location")
	cmd.Flags().Float64Var(&params.weight, "weight", 0, "mass of one container in grams (required)")
	cmd.Flags().IntVar(&params.count, "count", 0, "number of containers (required)")
	cmd.Flags().Float64Var(&params.factor, "factor", 0, "emission factor used when the key is not in the matrix")
	cmd.Flags().StringVarP(&params.format, "output", "o", engine.FormatTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("count")
	cmd.MarkFlagsMutuallyExclusive("key", "supplier")

	return cmd
}

func runManufacturing(cmd *cobra.Command, params manufacturingParams) error {
	if params.weight < 0 {
		return errors.New("--weight must not be negative")
	}
	if params.count < 0 {
		return errors.New("--count must not be negative")
	}

	ctx := cmd.Context()
	cfg := configFrom(cmd)
	svc, err := loadService(ctx, cfg, nil)
	if err != nil {
		return err
	}

	in := engine.ManufacturingInput{
		Key:           params.key,
		Supplier:      params.supplier,
		Product:       params.product,
		Location:      params.location,
		UnitMassGrams: params.weight,
		Count:         params.count,
	}
	if cmd.Flags().Changed("factor") {
		f := params.factor
		in.SuppliedFactor = &f
	}

	res := svc.Manufacture(ctx, in)

	switch params.format {
	case engine.FormatJSON:
		return writeIndentedJSON(cmd.OutOrStdout(), res)
	case "", engine.FormatTable:
		return renderManufacturing(cmd.OutOrStdout(), res, cfg.Output.Precision)
	default:
		return fmt.Errorf("unsupported output format %q", params.format)
	}
}

// renderManufacturing writes a manufacturing result as label/value lines.
func renderManufacturing(w io.Writer, r engine.ManufacturingResult, precision int) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	rows := [][2]string{
		{"Key", orDash(r.Key)},
		{"Factor", fmt.Sprintf("%g (%s)", r.Factor, r.Source)},
		{"Containers", greenops.FormatNumber(int64(r.Count))},
		{"Container weight (g)", greenops.FormatFloat(r.UnitMassGrams, 0)},
		{"Total mass", greenops.FormatTonnes(r.TotalMassTonnes, precision)},
		{"Short tons", greenops.FormatFloat(r.ShortTons, precision)},
		{"Emissions", greenops.FormatTonnes(r.Emissions, precision)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	return tw.Flush()
}
