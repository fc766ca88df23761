package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const freightCSV = `Vehicle and Size,Mode of Transport,Region,CO2,CO2 Unit - Numerator,CO2 Unit - Denominator,CH4,CH4 Unit - Numerator,CH4 Unit - Denominator
Watercraft - Shipping - Large Bulk Carrier (14201 tonnes deadweight),Water,US,0.0529109,kg,Tonne Mile,0.0000012,kg,Tonne Mile
Rail,Rail,US,0.0277782,kg,Tonne Mile,,kg,Tonne Mile
Rail,Rail,US,9.99,kg,Tonne Mile,,,
Rail,Rail,UK,0.0301,kg,Tonne Kilometer,n/a,kg,Tonne Kilometer
,Rail,US,1,kg,Tonne Mile,,,
"Road Vehicle - HGV - Rigid - Engine Size 3.5 - 7.5 tonnes",Road,US,"0.3273865",kg,Tonne Mile,,,
`

func parseFreight(t *testing.T) *Table {
	t.Helper()
	table, err := ParseTable(strings.NewReader(freightCSV), VehicleSpec())
	require.NoError(t, err)
	return table
}

func TestParseTable(t *testing.T) {
	table := parseFreight(t)

	assert.Equal(t, "ef_freight", table.Name())
	assert.Equal(t, 5, table.Len(), "blank key row is skipped")
	assert.Contains(t, table.Headers(), "CO2 Unit - Numerator")
}

func TestTable_Lookup(t *testing.T) {
	table := parseFreight(t)

	tests := []struct {
		name      string
		key       string
		region    string
		wantRows  int
		wantValue float64
	}{
		{"exact", "Rail", "US", 2, 0.0277782},
		{"case and whitespace folded", "  rail ", " us", 2, 0.0277782},
		{"different region", "Rail", "UK", 1, 0.0301},
		{"quoted key", "Road Vehicle - HGV - Rigid - Engine Size 3.5 - 7.5 tonnes", "US", 1, 0.3273865},
		{"unknown key", "Barge", "US", 0, 0},
		{"unknown region", "Rail", "DE", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := table.Lookup(tt.key, tt.region)
			require.Len(t, rows, tt.wantRows)
			if tt.wantRows == 0 {
				return
			}
			f, ok := rows[0].Factor(CO2)
			require.True(t, ok)
			assert.True(t, f.Valid)
			assert.InDelta(t, tt.wantValue, f.Value, 1e-12)
			assert.Equal(t, "kg", f.Numerator)
		})
	}
}

func TestTable_FactorCells(t *testing.T) {
	table := parseFreight(t)

	rail := table.Lookup("Rail", "US")[0]
	ch4, ok := rail.Factor(CH4)
	require.True(t, ok)
	assert.False(t, ch4.Valid, "blank cell is not a factor")
	assert.Equal(t, "Tonne Mile", ch4.Denominator)

	uk := table.Lookup("Rail", "UK")[0]
	ch4, _ = uk.Factor(CH4)
	assert.False(t, ch4.Valid, "non-numeric cell is not a factor")
	assert.Equal(t, "n/a", ch4.Raw)

	water := table.Lookup("Watercraft - Shipping - Large Bulk Carrier (14201 tonnes deadweight)", "US")[0]
	assert.Equal(t, "Water", water.Mode)
	assert.Equal(t, "US", water.Fields["Region"])
}

func TestTable_Keys(t *testing.T) {
	table := parseFreight(t)

	assert.Equal(t, []string{"Rail"}, table.Keys("us", "RAIL"))
	assert.Equal(t, []string{
		"Rail",
		"Road Vehicle - HGV - Rigid - Engine Size 3.5 - 7.5 tonnes",
		"Watercraft - Shipping - Large Bulk Carrier (14201 tonnes deadweight)",
	}, table.Keys("US", ""))
	assert.Empty(t, table.Keys("FR", ""))
}

func TestParseTable_MissingColumns(t *testing.T) {
	_, err := ParseTable(strings.NewReader("Fuel,CO2\nDiesel,2.6\n"), FuelCO2Spec())
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Region")

	_, err = ParseTable(strings.NewReader("Region,CO2\nUS,2.6\n"), FuelCO2Spec())
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestParseTable_FuelTableOnlyReadsItsPollutant(t *testing.T) {
	csv := "\ufeffFuel,Region,CO2,CO2 Unit - Numerator,CO2 Unit - Denominator,CH4\n" +
		"Diesel,US,\"10,210\",g,Gallon (US),0.4\n"
	table, err := ParseTable(strings.NewReader(csv), FuelCO2Spec())
	require.NoError(t, err)

	row := table.Lookup("diesel", "us")[0]
	co2, ok := row.Factor(CO2)
	require.True(t, ok)
	assert.InDelta(t, 10210, co2.Value, 1e-9)
	_, ok = row.Factor(CH4)
	assert.False(t, ok)
}

func TestNewTable(t *testing.T) {
	table := NewTable(FuelCH4Spec(), []Row{
		{Key: "Diesel Freight", Region: "US", Factors: map[Pollutant]Factor{CH4: {Value: 0.1, Valid: true}}},
		{Key: "  ", Region: "US"},
	})
	assert.Equal(t, 1, table.Len())
	assert.Len(t, table.Lookup("DIESEL FREIGHT", "us"), 1)

	var nilTable *Table
	assert.Empty(t, nilTable.Lookup("x", "y"))
	assert.Zero(t, nilTable.Len())
}

func TestParsePollutant(t *testing.T) {
	p, err := ParsePollutant(" co2 ")
	require.NoError(t, err)
	assert.Equal(t, CO2, p)

	p, err = ParsePollutant("CH4")
	require.NoError(t, err)
	assert.Equal(t, CH4, p)

	_, err = ParsePollutant("N2O")
	require.ErrorIs(t, err, ErrUnknownPollutant)

	assert.Equal(t, "CH4 Unit - Numerator", CH4.NumeratorColumn())
	assert.Equal(t, "CO2 Unit - Denominator", CO2.DenominatorColumn())
}

func TestTable_LookupReturnsCopies(t *testing.T) {
	table := parseFreight(t)

	rows := table.Lookup("Rail", "US")
	require.NotEmpty(t, rows)
	rows[0].Factors[CO2] = Factor{Value: 42, Valid: true}
	rows[0].Fields[RegionColumn] = "XX"
	all := table.Rows()
	delete(all[1].Factors, CO2)

	f, ok := table.Lookup("Rail", "US")[0].Factor(CO2)
	require.True(t, ok)
	assert.InDelta(t, 0.0277782, f.Value, 1e-12)
	assert.Equal(t, "US", table.Lookup("Rail", "US")[0].Fields[RegionColumn])
}
