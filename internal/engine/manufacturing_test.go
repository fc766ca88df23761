package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/ghgfreight/internal/reference"
)

func TestManufacturingCalculator(t *testing.T) {
	products := reference.NewProductTable(map[string]float64{
		"Acme - Pallet Box - Shenzhen": 1.8,
	})
	calc := NewManufacturingCalculator(products, -1)
	ctx := context.Background()

	tests := []struct {
		name       string
		in         ManufacturingInput
		wantFactor float64
		wantSource FactorSource
	}{
		{
			name:       "matrix key ignores supplied factor",
			in:         ManufacturingInput{Supplier: "Acme", Product: "Pallet Box", Location: "Shenzhen", UnitMassGrams: 25000, Count: 40, SuppliedFactor: ptr(9.0)},
			wantFactor: 1.8,
			wantSource: SourceMatrix,
		},
		{
			name:       "explicit composite key",
			in:         ManufacturingInput{Key: " Acme - Pallet Box - Shenzhen ", UnitMassGrams: 25000, Count: 40},
			wantFactor: 1.8,
			wantSource: SourceMatrix,
		},
		{
			name:       "unknown key uses supplied factor",
			in:         ManufacturingInput{Key: "Other - Crate - Lyon", UnitMassGrams: 25000, Count: 40, SuppliedFactor: ptr(0.75)},
			wantFactor: 0.75,
			wantSource: SourceFallback,
		},
		{
			name:       "key match is case sensitive",
			in:         ManufacturingInput{Key: "acme - pallet box - shenzhen", UnitMassGrams: 25000, Count: 40},
			wantFactor: DefaultFallbackFactor,
			wantSource: SourceFallback,
		},
		{
			name:       "no key and no supplied factor",
			in:         ManufacturingInput{UnitMassGrams: 1000, Count: 1},
			wantFactor: DefaultFallbackFactor,
			wantSource: SourceFallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Calculate(ctx, tt.in)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.InDelta(t, tt.wantFactor, got.Factor, 1e-12)

			grams := tt.in.UnitMassGrams * float64(tt.in.Count)
			assert.InDelta(t, grams, got.TotalMassGrams, 1e-9)
			assert.InDelta(t, grams/1e6, got.TotalMassTonnes, 1e-12)
			assert.InEpsilon(t, grams/GramsPerShortTon*MetricTonnesPerShortTon*tt.wantFactor, got.Emissions, 1e-9)
		})
	}
}

func TestManufacturingCalculator_Conversion(t *testing.T) {
	calc := NewManufacturingCalculator(nil, 0.5)
	got := calc.Calculate(context.Background(), ManufacturingInput{UnitMassGrams: 907184.74, Count: 2})

	assert.InDelta(t, 2.0, got.ShortTons, 1e-12)
	assert.InDelta(t, 1.0, got.ShortTonEmissions, 1e-12)
	assert.InDelta(t, 0.907185, got.Emissions, 1e-12)
}

func TestManufacturingCalculator_ZeroFallback(t *testing.T) {
	calc := NewManufacturingCalculator(nil, 0)
	got := calc.Calculate(context.Background(), ManufacturingInput{UnitMassGrams: 500, Count: 3})

	assert.Equal(t, SourceFallback, got.Source)
	assert.Zero(t, got.Emissions)
}

func TestManufacturingInput_LookupKey(t *testing.T) {
	assert.Equal(t, "A - B - C", ManufacturingInput{Supplier: " A", Product: "B ", Location: "C"}.LookupKey())
	assert.Equal(t, "explicit", ManufacturingInput{Key: "explicit", Supplier: "A"}.LookupKey())
	assert.Empty(t, ManufacturingInput{}.LookupKey())
}
