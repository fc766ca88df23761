// Package reference loads the emission factor reference datasets used by the
// engine: fuel-keyed and vehicle-keyed factor tables, the supplier product
// matrix, the dropdown lookups catalog, and the unit conversion matrix.
//
// Every table is immutable once loaded and safe for concurrent reads. Lookups
// fold case and surrounding whitespace on keys and regions; the first matching
// row in file order is authoritative.
package reference

import "fmt"

// Pollutant identifies a greenhouse gas with its own factor columns.
type Pollutant string

const (
	// CO2 is carbon dioxide.
	CO2 Pollutant = "CO2"
	// CH4 is methane.
	CH4 Pollutant = "CH4"
)

// Pollutants lists the supported gases in reporting order.
//
//nolint:gochecknoglobals // Read-only ordering shared by engine and renderers.
var Pollutants = []Pollutant{CO2, CH4}

// ParsePollutant maps a name such as "co2" to its Pollutant.
func ParsePollutant(s string) (Pollutant, error) {
	switch Pollutant(normalize(s)) {
	case "co2":
		return CO2, nil
	case "ch4":
		return CH4, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPollutant, s)
	}
}

// NumeratorColumn is the header holding the factor's numerator unit.
func (p Pollutant) NumeratorColumn() string { return string(p) + " Unit - Numerator" }

// DenominatorColumn is the header holding the factor's denominator unit.
func (p Pollutant) DenominatorColumn() string { return string(p) + " Unit - Denominator" }

// Factor is one pollutant's raw factor as published in a reference row.
type Factor struct {
	// Raw is the cell text before parsing.
	Raw string `json:"raw"`
	// Value is the parsed factor. It is meaningful only when Valid is true.
	Value float64 `json:"value"`
	// Valid is false when the cell was blank or not a number.
	Valid bool `json:"valid"`
	// Numerator is the mass unit of the factor, e.g. "kg".
	Numerator string `json:"numerator"`
	// Denominator is the activity unit of the factor, e.g. "Tonne Mile".
	Denominator string `json:"denominator"`
}

// Row is a single reference record.
type Row struct {
	Key     string               `json:"key"`
	Region  string               `json:"region"`
	Mode    string               `json:"mode_of_transport,omitempty"`
	Factors map[Pollutant]Factor `json:"factors"`
	Fields  map[string]string    `json:"fields"`
}

// Factor returns the row's factor for p. ok is false when the table carries
// no columns for p.
func (r Row) Factor(p Pollutant) (Factor, bool) {
	f, ok := r.Factors[p]
	return f, ok
}
