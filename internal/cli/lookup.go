package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/reference"
)

// Catalog names served by the lookup command besides the lookups sheet.
const (
	catalogVehicles  = "vehicles"
	catalogFuels     = "fuels"
	catalogSuppliers = "suppliers"
	catalogUnits     = "conversion_units"
)

// lookupParams holds the flags of the lookup command.
type lookupParams struct {
	value  string
	region string
	mode   string
	format string
}

// NewLookupCmd creates the lookup command, which lists reference catalog
// values.
func NewLookupCmd() *cobra.Command {
	var params lookupParams

	cmd := &cobra.Command{
		Use:   "lookup [name]",
		Short: "List reference catalog values",
		Long: `Lists the values of a lookups-sheet column (region, scope, mode, ...) or
one of the derived catalogs: vehicles, fuels, suppliers, conversion_units.

With --value, prints the lookups-sheet rows whose column equals the value.
Without a name, lists the available catalogs.`,
		Example: `  # Regions known to the dataset
  ghgfreight lookup region

  # Road vehicles published for the US
  ghgfreight lookup vehicles --region US --mode road

  # Rows of the lookups sheet for the UK
  ghgfreight lookup region --value UK`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				names := append(reference.LookupNames(), catalogVehicles, catalogFuels, catalogSuppliers, catalogUnits)
				cmd.Println(strings.Join(names, "\n"))
				return nil
			}
			return runLookup(cmd, args[0], params)
		},
	}

	cmd.Flags().StringVar(&params.value, "value", "", "print the lookups rows matching this value")
	cmd.Flags().StringVar(&params.region, "region", "", "region filter for vehicles and fuels")
	cmd.Flags().StringVar(&params.mode, "mode", "", "mode of transport filter for vehicles")
	cmd.Flags().StringVarP(&params.format, "output", "o", engine.FormatTable, "output format: table or json")

	return cmd
}

func runLookup(cmd *cobra.Command, name string, params lookupParams) error {
	cfg := configFrom(cmd)
	ds, err := reference.LoadDataset(cmd.Context(), cfg.LoadOptions())
	if err != nil {
		return fmt.Errorf("loading reference dataset: %w", err)
	}

	w := cmd.OutOrStdout()
	if params.value != "" {
		rows, matchErr := ds.Lookups.Matching(name, params.value)
		if matchErr != nil {
			return matchErr
		}
		if params.format == engine.FormatJSON {
			return writeIndentedJSON(w, rows)
		}
		return renderLookupRows(w, rows)
	}

	var values []string
	switch strings.ToLower(name) {
	case catalogVehicles:
		values = ds.Vehicles.Keys(params.region, params.mode)
	case catalogFuels:
		values = ds.FuelCO2.Keys(params.region, "")
	case catalogSuppliers:
		values = ds.Suppliers
	case catalogUnits:
		values = ds.Units.FromUnits()
	default:
		values, err = ds.Lookups.Values(name)
		if err != nil {
			return err
		}
	}

	if params.format == engine.FormatJSON {
		if values == nil {
			values = []string{}
		}
		return writeIndentedJSON(w, values)
	}
	for _, v := range values {
		if _, err = fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}

// renderLookupRows writes matching lookup rows as a table, columns sorted.
func renderLookupRows(w io.Writer, rows []map[string]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no matching rows")
		return err
	}
	columns := make([]string, 0, len(rows[0]))
	for c := range rows[0] {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t"))); err != nil {
		return err
	}
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = orDash(row[c])
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeIndentedJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
