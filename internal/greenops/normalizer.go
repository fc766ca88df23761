package greenops

import (
	"math"
	"strings"
)

//nolint:gochecknoglobals // Static alias table.
var kgPerUnit = map[string]float64{
	"g": kgPerGram, "gco2e": kgPerGram, "gram": kgPerGram, "grams": kgPerGram,
	"kg": 1, "kgco2e": 1, "kilogram": 1, "kilograms": 1,
	"t": kgPerMetricTon, "tco2e": kgPerMetricTon, "mt": kgPerMetricTon,
	"tonne": kgPerMetricTon, "tonnes": kgPerMetricTon,
	"metric ton": kgPerMetricTon, "metric tons": kgPerMetricTon,
	"short ton": kgPerShortTon, "short tons": kgPerShortTon,
	"lb": kgPerPound, "lbco2e": kgPerPound, "pound": kgPerPound, "pounds": kgPerPound,
}

// NormalizeToKg converts a carbon quantity to kilograms. Unit labels are
// matched without regard to case or surrounding whitespace.
//
// Returns ErrNegativeValue if value is negative, ErrInvalidUnit if the unit is
// not recognized, and ErrCalculationOverflow for Inf/NaN input or results.
func NormalizeToKg(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}

	factor, ok := kgPerUnit[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, ErrInvalidUnit
	}

	kg := value * factor
	if math.IsInf(kg, 0) {
		return 0, ErrCalculationOverflow
	}
	return kg, nil
}
