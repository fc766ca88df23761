package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rshade/ghgfreight/internal/logging"
	"github.com/rshade/ghgfreight/internal/reference"
	"github.com/rshade/ghgfreight/internal/units"
)

// UnitConverter resolves a directional unit conversion factor.
type UnitConverter interface {
	Convert(from, to string) (float64, bool)
}

// FactorTable returns reference rows for a (key, region) pair in file order.
type FactorTable interface {
	Lookup(key, region string) []reference.Row
}

// ProductFactorTable returns the manufacturing factor for a product key.
type ProductFactorTable interface {
	Lookup(key string) (float64, bool)
}

// UnitPair is a conversion that could not be resolved.
type UnitPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (p UnitPair) String() string { return fmt.Sprintf("%q -> %q", p.From, p.To) }

// Resolution is the outcome of resolving one emission factor.
//
// Factor is expressed in metric tonnes of pollutant per unit of activity:
// RawFactor x NumeratorConversion x DenominatorConversion.
type Resolution struct {
	Pollutant             reference.Pollutant `json:"pollutant"`
	Key                   string              `json:"key"`
	Region                string              `json:"region"`
	Unit                  string              `json:"unit"`
	RawFactor             float64             `json:"raw_factor"`
	Numerator             string              `json:"numerator"`
	Denominator           string              `json:"denominator"`
	NumeratorConversion   float64             `json:"numerator_conversion"`
	DenominatorConversion float64             `json:"denominator_conversion"`
	Factor                float64             `json:"factor"`
	Status                Status              `json:"status"`
	Message               string              `json:"message,omitempty"`
	Unresolved            []UnitPair          `json:"unresolved_units,omitempty"`
}

// Resolver looks up reference factors and normalizes them to metric tonnes
// per activity unit. It holds no mutable state.
type Resolver struct {
	units    UnitConverter
	vehicles FactorTable
	fuel     map[reference.Pollutant]FactorTable
}

// NewResolver builds a Resolver. fuel maps each pollutant to its fuel-keyed
// table; a pollutant with no entry resolves to no_data on the fuel path.
func NewResolver(conv UnitConverter, vehicles FactorTable, fuel map[reference.Pollutant]FactorTable) *Resolver {
	f := make(map[reference.Pollutant]FactorTable, len(fuel))
	for p, t := range fuel {
		f[p] = t
	}
	return &Resolver{units: conv, vehicles: vehicles, fuel: f}
}

// NewResolverFromDataset wires a Resolver to a loaded reference dataset.
func NewResolverFromDataset(ds *reference.Dataset) *Resolver {
	return NewResolver(ds.Units, ds.Vehicles, map[reference.Pollutant]FactorTable{
		reference.CO2: ds.FuelCO2,
		reference.CH4: ds.FuelCH4,
	})
}

// ResolveVehicle resolves the distance/weight factor for a vehicle
// classification in a region. measurementUnit is the record's activity unit,
// converted into the factor's denominator unit.
func (r *Resolver) ResolveVehicle(
	ctx context.Context,
	pollutant reference.Pollutant,
	vehicle, region, measurementUnit string,
) Resolution {
	return r.resolve(ctx, "resolve_vehicle", r.vehicles, pollutant, vehicle, region, measurementUnit)
}

// ResolveFuel resolves the fuel-consumption factor for a fuel in a region.
// fuelUnit is the unit the fuel amount is expressed in.
func (r *Resolver) ResolveFuel(
	ctx context.Context,
	pollutant reference.Pollutant,
	fuel, fuelUnit, region string,
) Resolution {
	return r.resolve(ctx, "resolve_fuel", r.fuel[pollutant], pollutant, fuel, region, fuelUnit)
}

func (r *Resolver) resolve(
	ctx context.Context,
	operation string,
	table FactorTable,
	pollutant reference.Pollutant,
	key, region, unit string,
) Resolution {
	log := logging.FromContext(ctx)
	res := Resolution{Pollutant: pollutant, Key: key, Region: region, Unit: unit}

	noData := func(msg string) Resolution {
		res.Status = StatusNoData
		res.Message = msg
		res.Factor = 0
		log.Debug().
			Str("component", "engine").
			Str("operation", operation).
			Str("pollutant", string(pollutant)).
			Str("key", key).
			Str("region", region).
			Msg(msg)
		return res
	}

	if table == nil {
		return noData("no reference table for pollutant")
	}

	rows := table.Lookup(key, region)
	if len(rows) == 0 {
		return noData(fmt.Sprintf("no factor published for %q in region %q", key, region))
	}

	f, ok := rows[0].Factor(pollutant)
	if !ok || !f.Valid {
		return noData(fmt.Sprintf("%s factor for %q in region %q is blank or not numeric", pollutant, key, region))
	}
	res.RawFactor = f.Value
	res.Numerator = f.Numerator
	res.Denominator = f.Denominator

	if strings.TrimSpace(unit) == "" {
		return noData("activity unit is missing")
	}

	if r.units == nil {
		res.Unresolved = []UnitPair{{From: f.Numerator, To: units.MetricTon}, {From: unit, To: f.Denominator}}
	} else {
		if v, ok := r.units.Convert(f.Numerator, units.MetricTon); ok {
			res.NumeratorConversion = v
		} else {
			res.Unresolved = append(res.Unresolved, UnitPair{From: f.Numerator, To: units.MetricTon})
		}
		if v, ok := r.units.Convert(unit, f.Denominator); ok {
			res.DenominatorConversion = v
		} else {
			res.Unresolved = append(res.Unresolved, UnitPair{From: unit, To: f.Denominator})
		}
	}

	if len(res.Unresolved) > 0 {
		pairs := make([]string, len(res.Unresolved))
		for i, p := range res.Unresolved {
			pairs[i] = p.String()
		}
		res.Status = StatusUnresolvedUnit
		res.Factor = 0
		res.Message = "missing unit conversion " + strings.Join(pairs, ", ")
		log.Debug().
			Str("component", "engine").
			Str("operation", operation).
			Str("pollutant", string(pollutant)).
			Str("key", key).
			Str("region", region).
			Strs("unresolved", pairs).
			Msg("unit conversion unresolved")
		return res
	}

	res.Factor = res.RawFactor * res.NumeratorConversion * res.DenominatorConversion
	res.Status = StatusSuccess

	log.Debug().
		Str("component", "engine").
		Str("operation", operation).
		Str("pollutant", string(pollutant)).
		Str("key", key).
		Str("region", region).
		Float64("raw_factor", res.RawFactor).
		Float64("numerator_conversion", res.NumeratorConversion).
		Float64("denominator_conversion", res.DenominatorConversion).
		Float64("factor", res.Factor).
		Msg("emission factor resolved")

	return res
}
