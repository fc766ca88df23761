package ingest

import (
	"context"
	"strings"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/logging"
)

// MapRow converts one activity row into an engine record. Malformed numeric
// cells are reported and treated as absent so the row still reaches the
// calculator.
func MapRow(index int, row ActivityRow) (*engine.ActivityRecord, []RowError) {
	var errs []RowError
	float := func(field string, v Value) *float64 {
		f, err := v.Float()
		if err != nil {
			errs = append(errs, RowError{Row: index, Field: field, Err: err})
		}
		return f
	}

	distance := float("Distance_Travelled", row.DistanceTravelled)
	tonnes := float("Total_Weight_Of_Freight_InTonne", row.TotalWeightInTonnes)
	passengers, err := row.NumOfPassenger.Int()
	if err != nil {
		errs = append(errs, RowError{Row: index, Field: "Num_Of_Passenger", Err: err})
	}
	fuelAmount := float("Fuel_Amount", row.FuelAmount)

	rec := engine.NewActivityRecord(index, engine.ActivityRecord{
		SourceDescription: row.SourceDescription.String(),
		Region:            row.Region.String(),
		ModeOfTransport:   row.ModeOfTransport.String(),
		Scope:             row.Scope.String(),
		ActivityType:      row.TypeOfActivityData.String(),
		VehicleType:       row.VehicleType.String(),
		Distance:          distance,
		FreightTonnes:     tonnes,
		Passengers:        passengers,
		MeasurementUnit:   row.UnitsOfMeasurement.String(),
		FuelType:          row.FuelUsed.String(),
		FuelAmount:        fuelAmount,
		FuelUnit:          row.UnitOfFuelAmount.String(),
	})
	return rec, errs
}

// MapRows converts every row, keeping input order. Row errors from all rows
// are collected.
func MapRows(ctx context.Context, rows []ActivityRow) ([]*engine.ActivityRecord, []RowError) {
	records := make([]*engine.ActivityRecord, 0, len(rows))
	var errs []RowError
	for i, row := range rows {
		rec, rowErrs := MapRow(i, row)
		records = append(records, rec)
		errs = append(errs, rowErrs...)
	}

	if len(errs) > 0 {
		logging.FromContext(ctx).Warn().
			Str("component", "ingest").
			Str("operation", "map_rows").
			Int("row_count", len(rows)).
			Int("error_count", len(errs)).
			Msg("activity rows contain malformed fields")
	}
	return records, errs
}

// Records maps the request's activity rows.
func (r *ComputeRequest) Records(ctx context.Context) ([]*engine.ActivityRecord, []RowError) {
	return MapRows(ctx, r.ActivityRows)
}

// ManufacturingInput converts the supplier data into a manufacturing input.
// It returns ErrNoSupplierData when the request carries no supplier data or
// no container quantities.
func (r *ComputeRequest) ManufacturingInput() (engine.ManufacturingInput, []RowError, error) {
	if r.SupplierData == nil {
		return engine.ManufacturingInput{}, nil, ErrNoSupplierData
	}
	return r.SupplierData.ManufacturingInput()
}

// ManufacturingInput converts the supplier data into a manufacturing input.
// Supplier_and_Container is used verbatim as the product key when present.
func (s SupplierData) ManufacturingInput() (engine.ManufacturingInput, []RowError, error) {
	var errs []RowError
	const row = -1

	in := engine.ManufacturingInput{
		Key:      strings.TrimSpace(s.SupplierAndContainer.String()),
		Supplier: s.Supplier.String(),
		Product:  s.Product.String(),
		Location: s.Location.String(),
	}

	weight, err := s.ContainerWeight.Float()
	if err != nil {
		errs = append(errs, RowError{Row: row, Field: "Container_Weight", Err: err})
	}
	count, err := s.NumberOfContainers.Int()
	if err != nil {
		errs = append(errs, RowError{Row: row, Field: "Number_Of_Containers", Err: err})
	}
	factor, err := s.SupplierEmissionFactor.Float()
	if err != nil {
		errs = append(errs, RowError{Row: row, Field: "Supplier_Emission_Factor", Err: err})
	}

	if weight == nil || count == nil {
		return in, errs, ErrNoSupplierData
	}
	in.UnitMassGrams = *weight
	in.Count = *count
	in.SuppliedFactor = factor
	return in, errs, nil
}
