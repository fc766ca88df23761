package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// columnSetters maps a normalized CSV header to the ActivityRow field it
// fills. Headers are matched case-insensitively with spaces, hyphens, and
// underscores treated alike.
//
//nolint:gochecknoglobals // Read-only header table.
var columnSetters = map[string]func(*ActivityRow, Value){
	"source_description":              func(r *ActivityRow, v Value) { r.SourceDescription = v },
	"region":                          func(r *ActivityRow, v Value) { r.Region = v },
	"mode_of_transport":               func(r *ActivityRow, v Value) { r.ModeOfTransport = v },
	"scope":                           func(r *ActivityRow, v Value) { r.Scope = v },
	"type_of_activity_data":           func(r *ActivityRow, v Value) { r.TypeOfActivityData = v },
	"vehicle_type":                    func(r *ActivityRow, v Value) { r.VehicleType = v },
	"distance_travelled":              func(r *ActivityRow, v Value) { r.DistanceTravelled = v },
	"total_weight_of_freight_intonne": func(r *ActivityRow, v Value) { r.TotalWeightInTonnes = v },
	"num_of_passenger":                func(r *ActivityRow, v Value) { r.NumOfPassenger = v },
	"units_of_measurement":            func(r *ActivityRow, v Value) { r.UnitsOfMeasurement = v },
	"fuel_used":                       func(r *ActivityRow, v Value) { r.FuelUsed = v },
	"fuel_amount":                     func(r *ActivityRow, v Value) { r.FuelAmount = v },
	"unit_of_fuel_amount":             func(r *ActivityRow, v Value) { r.UnitOfFuelAmount = v },
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// ParseActivityCSV reads activity rows from CSV. Unknown columns are
// ignored, rows with every cell blank are skipped, and short rows leave the
// missing fields blank.
func ParseActivityCSV(r io.Reader) ([]ActivityRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDocument
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	setters := make([]func(*ActivityRow, Value), len(header))
	recognized := 0
	for i, h := range header {
		if set, ok := columnSetters[normalizeHeader(h)]; ok {
			setters[i] = set
			recognized++
		}
	}
	if recognized == 0 {
		return nil, ErrMissingHeader
	}

	var rows []ActivityRow
	for {
		rec, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, readErr)
		}
		if blankRecord(rec) {
			continue
		}
		var row ActivityRow
		for i, cell := range rec {
			if i < len(setters) && setters[i] != nil {
				setters[i](&row, Value(cell))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
