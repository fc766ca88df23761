package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgfreight/internal/reference"
	"github.com/rshade/ghgfreight/internal/units"
)

const (
	waterVessel = "Watercraft - Shipping - Large Bulk Carrier (14201 tonnes deadweight)"
	roadVehicle = "Road Vehicle - HGV - Rigid - Engine Size 3.5 - 7.5 tonnes"
	railVehicle = "Rail"
	tonneMile   = "Tonne Mile"
)

const freightFixture = `Vehicle and Size,Mode of Transport,Region,CO2,CO2 Unit - Numerator,CO2 Unit - Denominator,CH4,CH4 Unit - Numerator,CH4 Unit - Denominator
Watercraft - Shipping - Large Bulk Carrier (14201 tonnes deadweight),Water,US,0.0529109,kg,Tonne Mile,0.0000012,kg,Tonne Mile
Road Vehicle - HGV - Rigid - Engine Size 3.5 - 7.5 tonnes,Road,US,0.3273865,kg,Tonne Mile,0.0000350,kg,Tonne Mile
Rail,Rail,US,0.0277782,kg,Tonne Mile,0.0000022,kg,Tonne Mile
Rail,Rail,US,9.99,kg,Tonne Mile,9.99,kg,Tonne Mile
Air Freight,Air,US,1.2,kg,Furlong,,kg,Tonne Mile
`

const fuelCO2Fixture = `Fuel,Region,CO2,CO2 Unit - Numerator,CO2 Unit - Denominator
Diesel,US,10.21,kg,Gallons
Marine Fuel Oil,US,3.114,Metric Ton,Metric Ton
`

const fuelCH4Fixture = `Transport and Fuel,Region,CH4,CH4 Unit - Numerator,CH4 Unit - Denominator
Diesel,US,0.00041,kg,Gallons
`

func testUnits() *units.Table {
	return units.NewTable([]units.Entry{
		{From: "kg", To: units.MetricTon, Factor: 0.001},
		{From: units.MetricTon, To: units.MetricTon, Factor: 1},
		{From: tonneMile, To: tonneMile, Factor: 1},
		{From: "Tonne Kilometer", To: tonneMile, Factor: 0.621371},
		{From: "Gallons", To: "Gallons", Factor: 1},
		{From: "Litres", To: "Gallons", Factor: 0.264172},
	})
}

func parseFixture(t *testing.T, csv string, spec reference.TableSpec) *reference.Table {
	t.Helper()
	table, err := reference.ParseTable(strings.NewReader(csv), spec)
	require.NoError(t, err)
	return table
}

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(
		testUnits(),
		parseFixture(t, freightFixture, reference.VehicleSpec()),
		map[reference.Pollutant]FactorTable{
			reference.CO2: parseFixture(t, fuelCO2Fixture, reference.FuelCO2Spec()),
			reference.CH4: parseFixture(t, fuelCH4Fixture, reference.FuelCH4Spec()),
		},
	)
}

func ptr[T any](v T) *T { return &v }

func distanceRecord(index int, mode, vehicle string, distance, tonnes float64) *ActivityRecord {
	return NewActivityRecord(index, ActivityRecord{
		SourceDescription: mode + " leg",
		Region:            "US",
		ModeOfTransport:   mode,
		Scope:             "Scope 3",
		ActivityType:      ActivityDistance,
		VehicleType:       vehicle,
		Distance:          ptr(distance),
		FreightTonnes:     ptr(tonnes),
		MeasurementUnit:   tonneMile,
	})
}

func fuelRecord(index int, fuel string, amount float64, unit string) *ActivityRecord {
	return NewActivityRecord(index, ActivityRecord{
		SourceDescription: "generator",
		Region:            "US",
		ModeOfTransport:   "Road",
		Scope:             "Scope 1",
		ActivityType:      ActivityFuelUse,
		FuelType:          fuel,
		FuelAmount:        ptr(amount),
		FuelUnit:          unit,
	})
}

// goldenRecords are the three reference freight legs.
func goldenRecords() []*ActivityRecord {
	return []*ActivityRecord{
		distanceRecord(0, "Water", waterVessel, 5000, 381.6),
		distanceRecord(1, "Road", roadVehicle, 2000, 381.6),
		distanceRecord(2, "Rail", railVehicle, 1000, 381.6),
	}
}
