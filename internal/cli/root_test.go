package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgfreight/internal/cli"
	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/reference/referencetest"
)

// cliEnv builds an isolated environment: a private GHGFREIGHT_HOME, quiet
// logging, and a data directory holding the fixture dataset.
func cliEnv(t *testing.T, extra map[string]string) (string, func(string) (string, bool)) {
	t.Helper()
	t.Setenv("GHGFREIGHT_HOME", t.TempDir())

	env := map[string]string{"GHGFREIGHT_LOG_LEVEL": "error"}
	for k, v := range extra {
		env[k] = v
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return referencetest.Dir(t), lookup
}

// execute runs the root command and returns stdout, stderr, and the error.
func execute(t *testing.T, lookup func(string) (string, bool), args ...string) (string, string, error) {
	t.Helper()
	return executeContext(context.Background(), t, lookup, args...)
}

func executeContext(
	ctx context.Context,
	t *testing.T,
	lookup func(string) (string, bool),
	args ...string,
) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmdWithEnv("test", lookup)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const requestJSON = `{
  "supplier_data": {"Supplier_and_Container": "Acme - Pallet Box - Shenzhen", "Container_Weight": 25000, "Number_Of_Containers": 40},
  "activity_rows": [
    {"Region": "US", "Mode_of_Transport": "Rail", "Scope": "Scope 3", "Type_Of_Activity_Data": "Distance",
     "Vehicle_Type": "Rail", "Distance_Travelled": 1000, "Total_Weight_Of_Freight_InTonne": 381.6,
     "Units_of_Measurement": "Tonne Mile"},
    {"Region": "US", "Mode_of_Transport": "Road", "Scope": "Scope 1", "Type_Of_Activity_Data": "Fuel Use",
     "Fuel_Used": "Diesel", "Fuel_Amount": "1,000", "Unit_Of_Fuel_Amount": "Gallons"}
  ]
}`

const activityCSV = `Region,Mode of Transport,Scope,Type_Of_Activity_Data,Vehicle_Type,Distance_Travelled,Total_Weight_Of_Freight_InTonne,Units_of_Measurement
US,Rail,Scope 3,Distance,Rail,1000,381.6,Tonne Mile
`

func TestRoot_Help(t *testing.T) {
	_, lookup := cliEnv(t, nil)
	out, _, err := execute(t, lookup, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"compute", "convert", "factor", "manufacturing", "lookup", "serve", "config"} {
		assert.Contains(t, out, sub)
	}
}

func TestRoot_InvalidConfigRejected(t *testing.T) {
	dir, lookup := cliEnv(t, map[string]string{"GHGFREIGHT_CONCURRENCY": "0"})
	_, _, err := execute(t, lookup, "convert", "kg", "g", "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calculation.concurrency")
}

func TestCompute_Table(t *testing.T) {
	dir, lookup := cliEnv(t, nil)
	path := writeFile(t, "request.json", requestJSON)

	out, stderr, err := execute(t, lookup, "compute", path, "--data-dir", dir, "--details")
	require.NoError(t, err, stderr)

	assert.Contains(t, out, "Rows processed: 2")
	assert.Contains(t, out, "Manufacturing (matrix)")
	assert.Contains(t, out, "Dataset: 2024.1.0")
	assert.Contains(t, out, "GAS")
	assert.Contains(t, out, "MANUFACTURING")
	assert.Empty(t, stderr)
}

func TestCompute_JSON(t *testing.T) {
	dir, lookup := cliEnv(t, nil)
	path := writeFile(t, "request.json", requestJSON)

	out, _, err := execute(t, lookup, "compute", path, "--data-dir", dir, "-o", "json")
	require.NoError(t, err)

	var report engine.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Results, 4)
	assert.Equal(t, "2024.1.0", report.Metadata.DataVersion)
	require.NotNil(t, report.Summary)
	require.NotNil(t, report.Summary.Manufacturing)
	assert.Equal(t, engine.SourceMatrix, report.Summary.Manufacturing.Source)
	assert.Equal(t, 2, report.Summary.ProcessedRows)
}

func TestCompute_NDJSON(t *testing.T) {
	dir, lookup := cliEnv(t, nil)
	path := writeFile(t, "request.json", requestJSON)

	out, _, err := execute(t, lookup, "compute", path, "--data-dir", dir, "--output", "ndjson")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4)
	for _, l := range lines {
		var r engine.EmissionResult
		require.NoError(t, json.Unmarshal([]byte(l), &r))
	}
}

func TestCompute_CSVWithSupplierFlags(t *testing.T) {
	dir, lookup := cliEnv(t, nil)
	path := writeFile(t, "activity.csv", activityCSV)

	out, _, err := execute(t, lookup, "compute", path, "--data-dir", dir, "-o", "json",
		"--supplier", "Globex - Steel Drum - Rotterdam", "--container-weight", "1000", "--containers", "2")
	require.NoError(t, err)

	var report engine.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Summary.Manufacturing)
	assert.Equal(t, "Globex - Steel Drum - Rotterdam", report.Summary.Manufacturing.Key)
	assert.InDelta(t, 3.4, report.Summary.Manufacturing.Factor, 1e-12)
	assert.Equal(t, 2, report.Summary.Manufacturing.Count)
}

func TestCompute_RowErrors(t *testing.T) {
	dir, lookup := cliEnv(t, nil)
	path := writeFile(t, "activity.csv", strings.Replace(activityCSV, ",1000,", ",abc,", 1))

	_, stderr, err := execute(t, lookup, "compute", path, "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning: row 0")

	_, _, err = execute(t, lookup, "compute", path, "--data-dir", dir, "--strict")
	require.Error(t, err)
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitCodeRowErrors, exitErr.ExitCode)
	assert.Contains(t, err.Error(), "malformed")
}

func TestCompute_Errors(t *testing.T) {
	dir, lookup := cliEnv(t, nil)
	path := writeFile(t, "request.json", requestJSON)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"compute", filepath.Join(t.TempDir(), "nope.json"), "--data-dir", dir}, "reading activity file"},
		{"bad format", []string{"compute", path, "--data-dir", dir, "-o", "xml"}, "unsupported output format"},
		{"missing dataset", []string{"compute", path, "--data-dir", t.TempDir()}, "loading reference dataset"},
		{"no args", []string{"compute"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, lookup, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConvert(t *testing.T) {
	dir, lookup := cliEnv(t, nil)

	out, _, err := execute(t, lookup, "convert", "kg", "Metric Ton", "2,500", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2500 kg = 2.500000 Metric Ton")
	assert.Contains(t, out, "factor: 0.001")

	out, _, err = execute(t, lookup, "convert", "Gallons", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Gallons converts to: Gallons, Litres")

	_, _, err = execute(t, lookup, "convert", "kg", "Litres", "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no conversion from "kg" to "Litres"`)

	_, _, err = execute(t, lookup, "convert", "kg", "g", "lots", "--data-dir", dir)
	require.Error(t, err)
}

func TestFactor(t *testing.T) {
	dir, lookup := cliEnv(t, nil)

	out, _, err := execute(t, lookup, "factor", "--vehicle", referencetest.RailVehicle, "--region", "US",
		"--unit", "Tonne Mile", "--pollutant", "co2", "-o", "json", "--data-dir", dir)
	require.NoError(t, err)

	var res []engine.Resolution
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 1)
	assert.Equal(t, engine.StatusSuccess, res[0].Status)
	assert.InEpsilon(t, referencetest.RailCO2*0.001, res[0].Factor, 1e-9)

	out, _, err = execute(t, lookup, "factor", "--fuel", "Diesel", "--region", "US", "--unit", "Gallons",
		"--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "CO2")
	assert.Contains(t, out, "CH4")

	_, _, err = execute(t, lookup, "factor", "--region", "US", "--data-dir", dir)
	require.Error(t, err)

	_, _, err = execute(t, lookup, "factor", "--fuel", "Diesel", "--region", "US", "--pollutant", "N2O",
		"--data-dir", dir)
	require.Error(t, err)
}

func TestManufacturing(t *testing.T) {
	dir, lookup := cliEnv(t, nil)

	out, _, err := execute(t, lookup, "manufacturing", "--key", referencetest.ProductKey,
		"--weight", "25000", "--count", "40", "-o", "json", "--data-dir", dir)
	require.NoError(t, err)

	var res engine.ManufacturingResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, engine.SourceMatrix, res.Source)
	assert.InDelta(t, referencetest.ProductFactor, res.Factor, 1e-12)
	want := 25000.0 * 40 / engine.GramsPerShortTon * engine.MetricTonnesPerShortTon * referencetest.ProductFactor
	assert.InEpsilon(t, want, res.Emissions, 1e-12)

	out, _, err = execute(t, lookup, "mfg", "--supplier", "Nobody", "--product", "Crate", "--location", "Austin",
		"--weight", "12000", "--count", "10", "--factor", "1.8", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Nobody - Crate - Austin")
	assert.Contains(t, out, "1.8 (fallback)")

	_, _, err = execute(t, lookup, "manufacturing", "--key", "x", "--weight", "-1", "--count", "1", "--data-dir", dir)
	require.Error(t, err)
}

func TestLookup(t *testing.T) {
	dir, lookup := cliEnv(t, nil)

	out, _, err := execute(t, lookup, "lookup", "scope", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "Scope 1\nScope 3\n", out)

	out, _, err = execute(t, lookup, "lookup", "vehicles", "--region", "US", "--mode", "road", "-o", "json",
		"--data-dir", dir)
	require.NoError(t, err)
	var vehicles []string
	require.NoError(t, json.Unmarshal([]byte(out), &vehicles))
	assert.Len(t, vehicles, 2)

	out, _, err = execute(t, lookup, "lookup", "region", "--value", "UK", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Rail")

	out, _, err = execute(t, lookup, "lookup", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "conversion_units")

	_, _, err = execute(t, lookup, "lookup", "colour", "--data-dir", dir)
	require.Error(t, err)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	dir, lookup := cliEnv(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(500*time.Millisecond, cancel)

	out, _, err := executeContext(ctx, t, lookup, "serve", "--address", "127.0.0.1:0", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Serving ghgfreight API")
}
