package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/reference"
)

func testSummary() *engine.Summary {
	return &engine.Summary{
		ProcessedRows: 1234,
		Totals: map[reference.Pollutant]float64{
			reference.CO2: 10.5,
			reference.CH4: 0.25,
		},
		Manufacturing:  &engine.ManufacturingResult{Source: engine.SourceFallback, Emissions: 1},
		TotalEmissions: 11.75,
		StatusCounts: map[engine.Status]int{
			engine.StatusSuccess: 3,
			engine.StatusNoData:  1,
		},
	}
}

func TestWriteSummaryHeader_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummaryHeader(&buf, testSummary(), 2, "2024.1.0"))

	out := buf.String()
	assert.Contains(t, out, "Rows processed: 1,234\n")
	assert.Contains(t, out, "Transport CO2: 10.50 t\n")
	assert.Contains(t, out, "Transport CH4: 0.25 t\n")
	assert.Contains(t, out, "Manufacturing (fallback): 1.00 t\n")
	assert.Contains(t, out, "Total: 11.75 t\n")
	assert.Contains(t, out, "Dataset: 2024.1.0\n")
	assert.Contains(t, out, "Results: success=3 no_data=1\n")
	assert.NotContains(t, out, "╭")
}

func TestWriteSummaryHeader_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummaryHeader(&buf, nil, 2, ""))
	assert.Empty(t, buf.String())
}

func TestRenderStyledSummary(t *testing.T) {
	out := renderStyledSummary(testSummary(), 2, "")
	assert.Contains(t, out, "FREIGHT EMISSIONS")
	assert.Contains(t, out, "11.75 t")
	assert.Contains(t, out, "no_data=1")
	assert.Contains(t, out, "╭")
}

func TestHasFailures(t *testing.T) {
	s := testSummary()
	assert.True(t, hasFailures(s))
	s.StatusCounts = map[engine.Status]int{engine.StatusSuccess: 4}
	assert.False(t, hasFailures(s))
}

func TestIsWriterTerminal_Buffer(t *testing.T) {
	assert.False(t, isWriterTerminal(&bytes.Buffer{}))
}
