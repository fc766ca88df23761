package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rshade/ghgfreight/internal/greenops"
	"github.com/rshade/ghgfreight/internal/reference"
)

// Output formats accepted by Render.
const (
	FormatTable  = "table"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

// DefaultPrecision is the number of decimal places used for masses in table
// output.
const DefaultPrecision = 6

const (
	tabwriterPadding = 2
	colWidthSource   = 28
	truncateMinLen   = 3
)

// Render writes results and their summary in the named format.
func Render(w io.Writer, format string, results []EmissionResult, summary *Summary, precision int) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatTable:
		if err := RenderResultsTable(w, results, precision); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return RenderSummaryTable(w, summary, precision)
	case FormatJSON:
		return RenderJSON(w, results, summary)
	case FormatNDJSON:
		return RenderResultsNDJSON(w, results)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// RenderResultsTable writes one line per record and pollutant.
func RenderResultsTable(w io.Writer, results []EmissionResult, precision int) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	if _, err := fmt.Fprintf(tw, "ROW\tSOURCE\tMODE\tPATH\tGAS\tFACTOR\tEMISSIONS (t)\tSTATUS\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "---\t------\t----\t----\t---\t------\t-------------\t------\n"); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	for _, r := range results {
		status := StatusIcon(r.Status) + " " + r.Status.String()
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RowIndex,
			truncate(orDash(r.SourceDescription), colWidthSource),
			orDash(r.ModeOfTransport),
			r.Path,
			r.Pollutant,
			formatFactor(r.EmissionFactor),
			greenops.FormatFloat(r.Emissions, precision),
			status,
		); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	return tw.Flush()
}

// RenderSummaryTable writes the bucket totals, pollutant totals, and grand
// total.
func RenderSummaryTable(w io.Writer, s *Summary, precision int) error {
	if s == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	if _, err := fmt.Fprintf(tw, "MODE\tSCOPE\tACTIVITY\tGAS\tRECORDS\tEMISSIONS (t)\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "----\t-----\t--------\t---\t-------\t-------------\n"); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	for _, k := range s.Keys() {
		b := s.Bucket(k)
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			k.Mode, k.Scope, k.Activity, k.Pollutant, len(b.Details),
			greenops.FormatFloat(b.TotalEmissions, precision),
		); err != nil {
			return fmt.Errorf("writing bucket: %w", err)
		}
	}

	if _, err := fmt.Fprintf(tw, "\t\t\t\t\t\n"); err != nil {
		return err
	}
	for _, p := range reference.Pollutants {
		total, ok := s.Totals[p]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(tw, "TOTAL %s\t\t\t\t\t%s\n", p, greenops.FormatFloat(total, precision)); err != nil {
			return err
		}
	}
	if s.Manufacturing != nil {
		if _, err := fmt.Fprintf(tw, "MANUFACTURING\t%s\t%s\t\t%d\t%s\n",
			orDash(s.Manufacturing.Key), s.Manufacturing.Source, s.Manufacturing.Count,
			greenops.FormatFloat(s.Manufacturing.Emissions, precision),
		); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(tw, "TOTAL\t\t\t\t%d rows\t%s\n",
		s.ProcessedRows, greenops.FormatFloat(s.TotalEmissions, precision)); err != nil {
		return err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.Equivalencies != nil && s.Equivalencies.DisplayText != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", s.Equivalencies.DisplayText); err != nil {
			return err
		}
	}
	return nil
}

// ReportMetadata describes the run that produced a report.
type ReportMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	DataVersion string    `json:"data_version,omitempty"`
}

// Report is the top-level JSON document.
type Report struct {
	Metadata ReportMetadata   `json:"metadata"`
	Results  []EmissionResult `json:"results"`
	Summary  *Summary         `json:"summary"`
}

// RenderJSON writes the results and summary as one indented document.
func RenderJSON(w io.Writer, results []EmissionResult, summary *Summary) error {
	return RenderReport(w, ReportMetadata{GeneratedAt: time.Now().UTC()}, results, summary)
}

// RenderReport writes a Report with the given metadata.
func RenderReport(w io.Writer, meta ReportMetadata, results []EmissionResult, summary *Summary) error {
	if results == nil {
		results = []EmissionResult{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(Report{Metadata: meta, Results: results, Summary: summary}); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// RenderResultsNDJSON writes each result as a separate JSON line.
func RenderResultsNDJSON(w io.Writer, results []EmissionResult) error {
	for _, r := range results {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	return nil
}

func formatFactor(f float64) string {
	if f == 0 {
		return "-"
	}
	return fmt.Sprintf("%.6g", f)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= truncateMinLen {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
