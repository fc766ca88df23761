package engine

import (
	"context"
	"strings"

	"github.com/rshade/ghgfreight/internal/logging"
	"github.com/rshade/ghgfreight/internal/reference"
)

// Mass conversion constants for container manufacturing emissions.
const (
	// GramsPerShortTon converts grams to US short tons.
	GramsPerShortTon = 907184.74
	// MetricTonnesPerShortTon converts US short tons to metric tonnes.
	MetricTonnesPerShortTon = 0.907185
	// GramsPerMetricTonne converts grams to metric tonnes.
	GramsPerMetricTonne = 1_000_000.0
	// DefaultFallbackFactor is the tCO2e per tonne used when no product
	// factor is known.
	DefaultFallbackFactor = 0.5
)

// FactorSource reports where a manufacturing factor came from.
type FactorSource string

const (
	// SourceMatrix means the factor was found in the product matrix.
	SourceMatrix FactorSource = "matrix"
	// SourceFallback means the key was not in the matrix and the caller's
	// factor (or the configured default) was used.
	SourceFallback FactorSource = "fallback"
)

// ManufacturingInput identifies a container product and its quantity.
// Key, when set, is used verbatim; otherwise it is composed from supplier,
// product, and location.
type ManufacturingInput struct {
	Key            string   `json:"key,omitempty"`
	Supplier       string   `json:"supplier,omitempty"`
	Product        string   `json:"product,omitempty"`
	Location       string   `json:"location,omitempty"`
	UnitMassGrams  float64  `json:"container_weight"`
	Count          int      `json:"number_of_containers"`
	SuppliedFactor *float64 `json:"supplier_emission_factor,omitempty"`
}

// LookupKey returns the product matrix key for the input.
func (in ManufacturingInput) LookupKey() string {
	if k := strings.TrimSpace(in.Key); k != "" {
		return k
	}
	if strings.TrimSpace(in.Supplier+in.Product+in.Location) == "" {
		return ""
	}
	return reference.ProductKey(in.Supplier, in.Product, in.Location)
}

// ManufacturingResult holds the emissions embodied in the containers.
type ManufacturingResult struct {
	Key               string       `json:"key"`
	Factor            float64      `json:"supplier_emission_factor"`
	Source            FactorSource `json:"emission_factor_source"`
	UnitMassGrams     float64      `json:"container_weight"`
	Count             int          `json:"number_of_containers"`
	TotalMassGrams    float64      `json:"total_material_weight_grams"`
	TotalMassTonnes   float64      `json:"total_material_weight_tonnes"`
	ShortTons         float64      `json:"short_tons"`
	ShortTonEmissions float64      `json:"manufacturing_emissions_short_tons"`
	Emissions         float64      `json:"manufacturing_emissions"`
}

// ManufacturingCalculator computes container manufacturing emissions.
type ManufacturingCalculator struct {
	products ProductFactorTable
	fallback float64
}

// NewManufacturingCalculator creates a calculator. A negative fallback
// selects DefaultFallbackFactor.
func NewManufacturingCalculator(products ProductFactorTable, fallback float64) *ManufacturingCalculator {
	if fallback < 0 {
		fallback = DefaultFallbackFactor
	}
	return &ManufacturingCalculator{products: products, fallback: fallback}
}

// Calculate resolves the factor from the product matrix, falling back to the
// supplied factor and then the configured default. Container mass is
// converted from grams to short tons before the factor is applied.
func (m *ManufacturingCalculator) Calculate(ctx context.Context, in ManufacturingInput) ManufacturingResult {
	key := in.LookupKey()
	res := ManufacturingResult{
		Key:           key,
		UnitMassGrams: in.UnitMassGrams,
		Count:         in.Count,
	}

	switch {
	case key != "" && m.lookup(key, &res.Factor):
		res.Source = SourceMatrix
	case in.SuppliedFactor != nil:
		res.Factor = *in.SuppliedFactor
		res.Source = SourceFallback
	default:
		res.Factor = m.fallback
		res.Source = SourceFallback
	}

	res.TotalMassGrams = in.UnitMassGrams * float64(in.Count)
	res.TotalMassTonnes = res.TotalMassGrams / GramsPerMetricTonne
	res.ShortTons = res.TotalMassGrams / GramsPerShortTon
	res.ShortTonEmissions = res.ShortTons * res.Factor
	res.Emissions = res.ShortTons * MetricTonnesPerShortTon * res.Factor

	logging.FromContext(ctx).Debug().
		Str("component", "engine").
		Str("operation", "manufacturing").
		Str("key", key).
		Str("source", string(res.Source)).
		Float64("factor", res.Factor).
		Float64("emissions", res.Emissions).
		Msg("manufacturing emissions calculated")

	return res
}

func (m *ManufacturingCalculator) lookup(key string, dst *float64) bool {
	if m.products == nil {
		return false
	}
	v, ok := m.products.Lookup(key)
	if ok {
		*dst = v
	}
	return ok
}
