package greenops

import (
	"fmt"
	"math"
)

// equivalencyDef pairs an equivalency with its EPA divisor and labels.
type equivalencyDef struct {
	kind    EquivalencyType
	factor  float64
	label   string
	compact string
}

//nolint:gochecknoglobals // Static table in display priority order.
var equivalencies = []equivalencyDef{
	{EquivalencyMilesDriven, EPAMilesDrivenFactor, "miles driven", "mi"},
	{EquivalencyGasolineGallons, EPAGasolineGallonFactor, "gallons of gasoline consumed", "gal"},
	{EquivalencyTreeSeedlings, EPATreeSeedlingFactor, "tree seedlings grown for 10 years", "seedlings"},
	{EquivalencySmartphonesCharged, EPASmartphoneChargeFactor, "smartphones charged", "phones"},
}

// Calculate converts input to kilograms and computes every equivalency.
//
// If normalization fails, Calculate returns an empty output and the error.
// Inputs below MinEquivalencyThresholdKg return an empty output with InputKg
// set and no error.
//
// Example:
//
//	out, err := Calculate(CarbonInput{Value: 0.15, Unit: "t"})
//	// out.DisplayText == "Equivalent to driving ~781 miles or burning ~17 gallons of gasoline"
func Calculate(input CarbonInput) (EquivalencyOutput, error) {
	kg, err := NormalizeToKg(input.Value, input.Unit)
	if err != nil {
		return EquivalencyOutput{IsEmpty: true}, err
	}

	if kg < MinEquivalencyThresholdKg {
		return EquivalencyOutput{InputKg: kg, IsEmpty: true}, nil
	}

	results := make([]EquivalencyResult, 0, len(equivalencies))
	compact := make([]any, 0, len(equivalencies))
	for _, def := range equivalencies {
		v := kg / def.factor
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
		}
		formatted := formatEquivalencyValue(v)
		results = append(results, EquivalencyResult{
			Type:           def.kind,
			Value:          v,
			FormattedValue: formatted,
			Label:          def.label,
		})
		compact = append(compact, formatted+" "+def.compact)
	}

	display := fmt.Sprintf("Equivalent to driving ~%s miles or burning ~%s gallons of gasoline",
		results[0].FormattedValue, results[1].FormattedValue)

	return EquivalencyOutput{
		InputKg:     kg,
		Results:     results,
		DisplayText: display,
		CompactText: fmt.Sprintf("(≈ %s, %s, %s, %s)", compact...),
	}, nil
}

// CalculateFromTonnes computes equivalencies for a total in metric tonnes CO2e.
func CalculateFromTonnes(tonnes float64) (EquivalencyOutput, error) {
	return Calculate(CarbonInput{Value: tonnes, Unit: "t"})
}

// formatEquivalencyValue uses million/billion scaling for large values and a
// rounded, comma-separated integer otherwise.
func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
