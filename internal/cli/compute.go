package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/ingest"
	"github.com/rshade/ghgfreight/internal/service"
)

// computeParams holds the flags of the compute command.
type computeParams struct {
	format          string
	precision       int
	details         bool
	supplier        string
	containerWeight float64
	containers      int
	supplierFactor  float64
	strict          bool
}

// NewComputeCmd creates the compute command, which calculates transport and
// manufacturing emissions for an activity document.
func NewComputeCmd() *cobra.Command {
	var params computeParams

	cmd := &cobra.Command{
		Use:   "compute <activity-file>",
		Short: "Compute emissions for an activity document",
		Long: `Computes CO2 and CH4 emissions for every activity row in a JSON compute
request or an activity CSV file, adds container manufacturing emissions when
supplier data is present, and prints the aggregated summary.

JSON documents use the compute request shape:
  {"supplier_data": {...}, "activity_rows": [...]}

CSV files carry one activity row per line with the same column names. Supplier
data for CSV input, or to override the document's, is given with --supplier,
--container-weight, and --containers.`,
		Example: `  # Compute a JSON request and print the summary table
  ghgfreight compute request.json

  # Include one line per record and pollutant
  ghgfreight compute activity.csv --details

  # Emit a JSON report
  ghgfreight compute request.json --output json

  # Add manufacturing emissions to CSV input
  ghgfreight compute activity.csv --supplier "Acme - Pallet Box - Shenzhen" \
    --container-weight 25000 --containers 40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, args[0], params)
		},
	}

	cmd.Flags().StringVarP(&params.format, "output", "o", "", "output format: table, json, or ndjson (default from config)")
	cmd.Flags().IntVar(&params.precision, "precision", 0, "decimal places for table output (default from config)")
	cmd.Flags().BoolVar(&params.details, "details", false, "include per-record results in table output")
	cmd.Flags().StringVar(&params.supplier, "supplier", "", "supplier and container key for manufacturing emissions")
	cmd.Flags().Float64Var(&params.containerWeight, "container-weight", 0, "mass of one container in grams")
	cmd.Flags().IntVar(&params.containers, "containers", 0, "number of containers")
	cmd.Flags().Float64Var(&params.supplierFactor, "supplier-factor", 0,
		"emission factor used when the supplier key is not in the product matrix")
	cmd.Flags().BoolVar(&params.strict, "strict", false, "fail when any row has malformed fields")

	return cmd
}

func runCompute(cmd *cobra.Command, path string, params computeParams) error {
	ctx := cmd.Context()
	cfg := configFrom(cmd)

	format := cfg.Output.DefaultFormat
	if cmd.Flags().Changed("output") {
		format = strings.ToLower(strings.TrimSpace(params.format))
	}
	precision := cfg.Output.Precision
	if cmd.Flags().Changed("precision") {
		precision = params.precision
	}

	req, err := ingest.LoadRequest(ctx, path)
	if err != nil {
		return err
	}
	applySupplierFlags(cmd, req, params)

	svc, err := loadService(ctx, cfg, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := svc.Compute(ctx, req)
	if err != nil {
		return fmt.Errorf("computing emissions: %w", err)
	}
	logger.Debug().Ctx(ctx).
		Str("path", path).
		Int("records", len(out.Records)).
		Dur("duration", time.Since(start)).
		Msg("compute finished")

	for _, re := range out.RowErrors {
		cmd.PrintErrf("Warning: %v\n", re)
	}
	if params.strict && len(out.RowErrors) > 0 {
		return &ExitError{
			ExitCode: ExitCodeRowErrors,
			Reason:   fmt.Sprintf("%d malformed field(s) in %s", len(out.RowErrors), path),
		}
	}

	return renderOutcome(cmd.OutOrStdout(), format, precision, params.details, out, svc)
}

// applySupplierFlags replaces the request's supplier data with the values
// given on the command line, when any were set.
func applySupplierFlags(cmd *cobra.Command, req *ingest.ComputeRequest, params computeParams) {
	flags := cmd.Flags()
	if !flags.Changed("supplier") && !flags.Changed("container-weight") && !flags.Changed("containers") &&
		!flags.Changed("supplier-factor") {
		return
	}

	sd := ingest.SupplierData{}
	if req.SupplierData != nil {
		sd = *req.SupplierData
	}
	if flags.Changed("supplier") {
		sd.SupplierAndContainer = ingest.Value(params.supplier)
	}
	if flags.Changed("container-weight") {
		sd.ContainerWeight = ingest.Value(strconv.FormatFloat(params.containerWeight, 'f', -1, 64))
	}
	if flags.Changed("containers") {
		sd.NumberOfContainers = ingest.Value(strconv.Itoa(params.containers))
	}
	if flags.Changed("supplier-factor") {
		sd.SupplierEmissionFactor = ingest.Value(strconv.FormatFloat(params.supplierFactor, 'f', -1, 64))
	}
	req.SupplierData = &sd
}

// renderOutcome writes a computation in the requested format.
func renderOutcome(
	w io.Writer,
	format string,
	precision int,
	details bool,
	out *service.Outcome,
	svc *service.Service,
) error {
	switch format {
	case "", engine.FormatTable:
		if err := writeSummaryHeader(w, out.Summary, precision, dataVersion(svc.Dataset())); err != nil {
			return err
		}
		if details {
			if err := engine.RenderResultsTable(w, out.Results, precision); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		return engine.RenderSummaryTable(w, out.Summary, precision)
	case engine.FormatJSON:
		meta := engine.ReportMetadata{
			GeneratedAt: time.Now().UTC(),
			DataVersion: dataVersion(svc.Dataset()),
		}
		return engine.RenderReport(w, meta, out.Results, out.Summary)
	default:
		return engine.Render(w, format, out.Results, out.Summary, precision)
	}
}
