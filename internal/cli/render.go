package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/greenops"
	"github.com/rshade/ghgfreight/internal/reference"
)

const summaryBoxWidth = 52

// boxBorderColor returns the Lip Gloss color used for summary box borders.
func boxBorderColor() lipgloss.Color { return lipgloss.Color("240") }

// boxTitleColor returns the Lip Gloss color used for summary box titles.
func boxTitleColor() lipgloss.Color { return lipgloss.Color("39") }

// colorWarning returns the Lip Gloss color used for row warnings.
func colorWarning() lipgloss.Color { return lipgloss.Color("214") }

// isWriterTerminal checks if the writer is a terminal.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// writeSummaryHeader writes the headline totals of a computation: a bordered
// box on a terminal, plain lines otherwise.
func writeSummaryHeader(w io.Writer, s *engine.Summary, precision int, version string) error {
	if s == nil {
		return nil
	}
	if isWriterTerminal(w) {
		_, err := fmt.Fprintln(w, renderStyledSummary(s, precision, version))
		return err
	}
	return renderPlainSummary(w, s, precision, version)
}

// summaryLines returns the label/value pairs shown in the header.
func summaryLines(s *engine.Summary, precision int, version string) [][2]string {
	p := message.NewPrinter(language.English)

	lines := [][2]string{
		{"Rows processed", p.Sprintf("%d", s.ProcessedRows)},
	}
	for _, pol := range reference.Pollutants {
		if total, ok := s.Totals[pol]; ok {
			lines = append(lines, [2]string{"Transport " + string(pol), greenops.FormatTonnes(total, precision)})
		}
	}
	if s.Manufacturing != nil {
		lines = append(lines, [2]string{
			"Manufacturing (" + string(s.Manufacturing.Source) + ")",
			greenops.FormatTonnes(s.Manufacturing.Emissions, precision),
		})
	}
	lines = append(lines, [2]string{"Total", greenops.FormatTonnes(s.TotalEmissions, precision)})
	if version != "" {
		lines = append(lines, [2]string{"Dataset", version})
	}
	return lines
}

// renderStyledSummary renders the headline totals in a rounded box.
func renderStyledSummary(s *engine.Summary, precision int, version string) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(boxTitleColor())

	labelStyle := lipgloss.NewStyle().Bold(true)

	borderStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(boxBorderColor()).
		Padding(0, 1).
		Width(summaryBoxWidth)

	var content strings.Builder
	content.WriteString(titleStyle.Render("FREIGHT EMISSIONS"))
	content.WriteString("\n\n")
	for _, l := range summaryLines(s, precision, version) {
		content.WriteString(labelStyle.Render(l[0] + ":"))
		content.WriteString(" ")
		content.WriteString(l[1])
		content.WriteString("\n")
	}

	if hasFailures(s) {
		warningStyle := lipgloss.NewStyle().Foreground(colorWarning())
		content.WriteString("\n")
		content.WriteString(warningStyle.Render(statusCountsLine(s)))
	}

	return borderStyle.Render(strings.TrimRight(content.String(), "\n"))
}

// renderPlainSummary writes the headline totals without styling.
func renderPlainSummary(w io.Writer, s *engine.Summary, precision int, version string) error {
	for _, l := range summaryLines(s, precision, version) {
		if _, err := fmt.Fprintf(w, "%s: %s\n", l[0], l[1]); err != nil {
			return err
		}
	}
	if len(s.StatusCounts) > 0 {
		if _, err := fmt.Fprintln(w, statusCountsLine(s)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// statusCountsLine lists result counts per status in a stable order.
func statusCountsLine(s *engine.Summary) string {
	parts := make([]string, 0, len(s.StatusCounts))
	for _, st := range engine.Statuses() {
		if n, ok := s.StatusCounts[st]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", st, n))
		}
	}
	return "Results: " + strings.Join(parts, " ")
}

// hasFailures reports whether any result ended in a non-success status.
func hasFailures(s *engine.Summary) bool {
	for st, n := range s.StatusCounts {
		if st != engine.StatusSuccess && n > 0 {
			return true
		}
	}
	return false
}
