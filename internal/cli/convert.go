package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgfreight/internal/greenops"
	"github.com/rshade/ghgfreight/internal/reference"
)

// NewConvertCmd creates the convert command, which looks up factors in the
// reference unit conversion matrix.
func NewConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <from-unit> [to-unit] [amount]",
		Short: "Convert an amount between units",
		Long: `Looks up the multiplier between two units in the reference conversion matrix
and applies it to amount (default 1). Unit names are matched case-insensitively.

With only a source unit, lists the units it can be converted to.`,
		Example: `  # Grams to metric tons
  ghgfreight convert g "Metric Ton" 25000

  # Which units can kg be converted to?
  ghgfreight convert kg`,
		Args: cobra.RangeArgs(1, 3), //nolint:mnd // from, to, amount
		RunE: runConvert,
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	ds, err := reference.LoadDataset(cmd.Context(), cfg.LoadOptions())
	if err != nil {
		return fmt.Errorf("loading reference dataset: %w", err)
	}

	from := args[0]
	if len(args) == 1 {
		targets := ds.Units.Targets(from)
		if len(targets) == 0 {
			return fmt.Errorf("unit %q is not in the conversion matrix", from)
		}
		cmd.Printf("%s converts to: %s\n", from, strings.Join(targets, ", "))
		return nil
	}

	to := args[1]
	amount := 1.0
	if len(args) == 3 { //nolint:mnd // amount is the third argument
		amount, err = strconv.ParseFloat(strings.ReplaceAll(args[2], ",", ""), 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[2], err)
		}
	}

	factor, ok := ds.Units.Convert(from, to)
	if !ok {
		return fmt.Errorf("no conversion from %q to %q", from, to)
	}

	cmd.Printf("%s %s = %s %s\n",
		strconv.FormatFloat(amount, 'g', -1, 64), from,
		greenops.FormatFloat(amount*factor, cfg.Output.Precision), to)
	cmd.Printf("factor: %g\n", factor)
	return nil
}
