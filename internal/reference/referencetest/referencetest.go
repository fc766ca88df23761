// Package referencetest provides a small reference dataset for tests. The
// tables match the sample files shipped in the repository's data directory.
package referencetest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgfreight/internal/reference"
)

// Golden raw CO2 factors, in kg per tonne mile, for region US.
const (
	WaterVehicle = "Watercraft - Shipping - Large Bulk Carrier (14201 tonnes deadweight)"
	RoadVehicle  = "Road Vehicle - HGV - Rigid - Engine Size 3.5 - 7.5 tonnes"
	RailVehicle  = "Rail"

	WaterCO2 = 0.0529109
	RoadCO2  = 0.3273865
	RailCO2  = 0.0277782

	// ProductKey has a factor of ProductFactor in the product matrix.
	ProductKey    = "Acme - Pallet Box - Shenzhen"
	ProductFactor = 2.1
)

// Files maps each default dataset file name to its contents.
//
//nolint:gochecknoglobals // Read-only fixture table.
var Files = map[string]string{
	reference.DefaultUnitConversionFile: `Unit conversion matrix,,,,,,
From Unit,,,,,,
,Metric Ton,kg,Tonne Mile,Tonne Kilometer,Gallons,Litres
kg,0.001,1,,,,
g,0.000001,0.001,,,,
lb,0.000453592,0.453592,,,,
Metric Ton,1,1000,,,,
Tonne Mile,,,1,1.609344,,
Tonne Kilometer,,,0.621371,1,,
Gallons,,,,,1,3.78541
Litres,,,,,0.264172,1
`,
	reference.DefaultFuelCO2File: `Fuel,Region,CO2,CO2 Unit - Numerator,CO2 Unit - Denominator
Diesel,US,10.21,kg,Gallons
Motor Gasoline,US,8.78,kg,Gallons
Residual Fuel Oil,US,11.27,kg,Gallons
Diesel,UK,2.66,kg,Litres
`,
	reference.DefaultFuelCH4File: `Transport and Fuel,Region,CH4,CH4 Unit - Numerator,CH4 Unit - Denominator
Diesel,US,0.00041,kg,Gallons
Motor Gasoline,US,0.00038,kg,Gallons
Diesel,UK,0.0000039,kg,Litres
`,
	reference.DefaultFreightFile: `Vehicle and Size,Mode of Transport,Region,CO2,CO2 Unit - Numerator,CO2 Unit - Denominator,CH4,CH4 Unit - Numerator,CH4 Unit - Denominator
Watercraft - Shipping - Large Bulk Carrier (14201 tonnes deadweight),Water,US,0.0529109,kg,Tonne Mile,0.0000016,kg,Tonne Mile
Road Vehicle - HGV - Rigid - Engine Size 3.5 - 7.5 tonnes,Road,US,0.3273865,kg,Tonne Mile,0.0000032,kg,Tonne Mile
Road Vehicle - Medium- and Heavy-Duty Truck,Road,US,0.168,kg,Tonne Mile,0.0000029,kg,Tonne Mile
Rail,Rail,US,0.0277782,kg,Tonne Mile,0.0000021,kg,Tonne Mile
Aircraft,Air,US,1.086,kg,Tonne Mile,0,kg,Tonne Mile
Rail,Rail,UK,0.0277,kg,Tonne Kilometer,0.0000019,kg,Tonne Kilometer
`,
	reference.DefaultProductMatrixFile: `SUPPLIER-PRODUCT-LOCATION,SUPPLIER,PRODUCT,LOCATION,MANUFACTURING-EMISSIONS-FACTOR
Acme - Pallet Box - Shenzhen,Acme,Pallet Box,Shenzhen,2.1
Globex - Steel Drum - Rotterdam,Globex,Steel Drum,Rotterdam,3.4
Initech - Tote - Monterrey,Initech,Tote,Monterrey,
`,
	reference.DefaultLookupsFile: `Region,Mode of Transport,Type of Activity Data,Scope,Units,IPCC GWP Version,Activity Data Columns,Unit of Fuel Amount
US,Road,Distance,Scope 1,Tonne Mile,AR5,Distance_Travelled,Gallons
UK,Rail,Fuel Use,Scope 3,Tonne Kilometer,AR6,Fuel_Amount,Litres
,Water,Fuel Use and Vehicle Distance,,Passenger Mile,,Total_Weight_Of_Freight_InTonne,
,Air,Custom vehicle,,Vehicle Mile,,,
`,
	reference.DefaultSuppliersFile: `Supplier and Container
"Acme - Pallet Box - Shenzhen"
"Globex - Steel Drum - Rotterdam"
"Initech - Tote - Monterrey"
`,
	reference.ManifestFile: `version: 2024.1.0
source: GHG Protocol cross-sector tools (sample subset)
published: "2024-03-01"
gwp_version: AR5
description: Sample reference tables for local runs and tests.
`,
}

// WriteDataset writes every fixture file into dir.
func WriteDataset(t testing.TB, dir string) {
	t.Helper()
	for name, content := range Files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

// Dir writes the fixture dataset into a fresh temporary directory and
// returns its path.
func Dir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	WriteDataset(t, dir)
	return dir
}

// Dataset loads the fixture dataset.
func Dataset(t testing.TB) *reference.Dataset {
	t.Helper()
	ds, err := reference.LoadDataset(context.Background(), reference.LoadOptions{DataDir: Dir(t)})
	require.NoError(t, err)
	return ds
}
