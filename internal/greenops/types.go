// Package greenops turns emission totals into relatable equivalencies.
//
// Freight totals are reported in metric tonnes CO2e. Calculate normalizes the
// input to kilograms and expresses it as miles driven, gallons of gasoline
// burned, tree seedlings grown, and smartphones charged, using EPA-published
// conversion factors.
package greenops

import "fmt"

// EquivalencyType represents a category of carbon emission equivalency.
type EquivalencyType int

// Equivalency categories, in display order.
const (
	EquivalencyMilesDriven EquivalencyType = iota
	EquivalencyGasolineGallons
	EquivalencyTreeSeedlings
	EquivalencySmartphonesCharged
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyMilesDriven:
		return "MilesDriven"
	case EquivalencyGasolineGallons:
		return "GasolineGallons"
	case EquivalencyTreeSeedlings:
		return "TreeSeedlings"
	case EquivalencySmartphonesCharged:
		return "SmartphonesCharged"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// MarshalText encodes the type by name so JSON output stays readable.
func (e EquivalencyType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (e *EquivalencyType) UnmarshalText(b []byte) error {
	for t := EquivalencyMilesDriven; t <= EquivalencySmartphonesCharged; t++ {
		if t.String() == string(b) {
			*e = t
			return nil
		}
	}
	return fmt.Errorf("unknown equivalency type %q", string(b))
}

// CarbonInput is a carbon quantity and its mass unit label.
type CarbonInput struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// EquivalencyResult is one equivalency of a carbon total, such as
// "781 miles driven".
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// EquivalencyOutput holds every equivalency for one total, in display order.
// DisplayText is the prose sentence shown under the summary table and
// CompactText the parenthesized short form. IsEmpty is set when the total is
// below MinEquivalencyThresholdKg or could not be normalized.
type EquivalencyOutput struct {
	InputKg     float64             `json:"input_kg"`
	Results     []EquivalencyResult `json:"results"`
	DisplayText string              `json:"display_text"`
	CompactText string              `json:"compact_text"`
	IsEmpty     bool                `json:"is_empty"`
}
