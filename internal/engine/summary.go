package engine

import (
	"sort"

	"github.com/rshade/ghgfreight/internal/greenops"
	"github.com/rshade/ghgfreight/internal/reference"
)

// Detail is one result entry inside a SummaryBucket. Fuel fields are set on
// the fuel path and distance fields on the distance path.
type Detail struct {
	RowIndex             int      `json:"row_index"`
	RecordID             string   `json:"record_id"`
	SourceDescription    string   `json:"source_description"`
	VehicleType          string   `json:"vehicle_type"`
	Region               string   `json:"region"`
	Emissions            float64  `json:"emissions"`
	EmissionFactor       float64  `json:"emission_factor"`
	Status               Status   `json:"status"`
	Message              string   `json:"message,omitempty"`
	FuelUsed             string   `json:"fuel_used,omitempty"`
	FuelAmount           *float64 `json:"fuel_amount,omitempty"`
	UnitOfFuelAmount     string   `json:"unit_of_fuel_amount,omitempty"`
	DistanceTravelled    *float64 `json:"distance_travelled,omitempty"`
	TotalWeightOfFreight *float64 `json:"total_weight_of_freight,omitempty"`
	UnitsOfMeasurement   string   `json:"units_of_measurement,omitempty"`
}

// SummaryBucket accumulates results sharing mode, scope, activity type, and
// pollutant.
type SummaryBucket struct {
	TotalEmissions float64  `json:"total_emissions"`
	Details        []Detail `json:"details"`
}

// BucketKey addresses one SummaryBucket.
type BucketKey struct {
	Mode      string              `json:"mode_of_transport"`
	Scope     string              `json:"scope"`
	Activity  CalculationPath     `json:"activity_type"`
	Pollutant reference.Pollutant `json:"pollutant"`
}

// PollutantBuckets maps a pollutant to its bucket.
type PollutantBuckets map[reference.Pollutant]*SummaryBucket

// TransportSummary nests buckets by mode of transport, scope, then activity
// type.
type TransportSummary map[string]map[string]map[CalculationPath]PollutantBuckets

// Summary is the aggregated view of a computation. All masses are metric
// tonnes.
type Summary struct {
	ProcessedRows  int                             `json:"processed_rows"`
	Modes          TransportSummary                `json:"summary_by_transport_scope_activity"`
	Totals         map[reference.Pollutant]float64 `json:"totals"`
	TransportTotal float64                         `json:"transport_total"`
	Manufacturing  *ManufacturingResult            `json:"manufacturing,omitempty"`
	TotalEmissions float64                         `json:"total_emissions"`
	StatusCounts   map[Status]int                  `json:"status_counts"`
	Equivalencies  *greenops.EquivalencyOutput     `json:"equivalencies,omitempty"`
}

// Bucket returns the bucket for a key, or nil.
func (s *Summary) Bucket(k BucketKey) *SummaryBucket {
	return s.Modes[k.Mode][k.Scope][k.Activity][k.Pollutant]
}

// Keys lists every bucket key sorted by mode, scope, and activity type, with
// pollutants in reporting order.
func (s *Summary) Keys() []BucketKey {
	var keys []BucketKey
	for mode, scopes := range s.Modes {
		for scope, activities := range scopes {
			for activity, buckets := range activities {
				for p := range buckets {
					keys = append(keys, BucketKey{Mode: mode, Scope: scope, Activity: activity, Pollutant: p})
				}
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		if a.Activity != b.Activity {
			return a.Activity < b.Activity
		}
		return pollutantRank(a.Pollutant) < pollutantRank(b.Pollutant)
	})
	return keys
}

func pollutantRank(p reference.Pollutant) int {
	for i, q := range reference.Pollutants {
		if q == p {
			return i
		}
	}
	return len(reference.Pollutants)
}

// Summarize folds results into buckets keyed by mode, scope, activity type,
// and pollutant. Every record gets a bucket for each pollutant present in the
// results even when it contributed nothing. manufacturing may be nil.
func Summarize(records []*ActivityRecord, results []EmissionResult, manufacturing *ManufacturingResult) *Summary {
	s := &Summary{
		Modes:         make(TransportSummary),
		Totals:        make(map[reference.Pollutant]float64),
		StatusCounts:  make(map[Status]int),
		Manufacturing: manufacturing,
	}

	pollutants := resultPollutants(results)
	for _, p := range pollutants {
		s.Totals[p] = 0
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		s.ProcessedRows++
		for _, p := range pollutants {
			s.ensure(BucketKey{Mode: rec.modeLabel(), Scope: rec.scopeLabel(), Activity: rec.Path(), Pollutant: p})
		}
	}

	for _, r := range results {
		k := BucketKey{
			Mode:      labelOrUnknown(r.ModeOfTransport),
			Scope:     labelOrUnknown(r.Scope),
			Activity:  r.Path,
			Pollutant: r.Pollutant,
		}
		b := s.ensure(k)
		b.TotalEmissions += r.Emissions
		b.Details = append(b.Details, detailFor(r))

		s.Totals[r.Pollutant] += r.Emissions
		s.StatusCounts[r.Status]++
	}

	for _, p := range pollutants {
		s.TransportTotal += s.Totals[p]
	}
	s.TotalEmissions = s.TransportTotal
	if manufacturing != nil {
		s.TotalEmissions += manufacturing.Emissions
	}

	if eq, err := greenops.CalculateFromTonnes(s.TotalEmissions); err == nil && !eq.IsEmpty {
		s.Equivalencies = &eq
	}

	return s
}

func (s *Summary) ensure(k BucketKey) *SummaryBucket {
	scopes, ok := s.Modes[k.Mode]
	if !ok {
		scopes = make(map[string]map[CalculationPath]PollutantBuckets)
		s.Modes[k.Mode] = scopes
	}
	activities, ok := scopes[k.Scope]
	if !ok {
		activities = make(map[CalculationPath]PollutantBuckets)
		scopes[k.Scope] = activities
	}
	buckets, ok := activities[k.Activity]
	if !ok {
		buckets = make(PollutantBuckets)
		activities[k.Activity] = buckets
	}
	b, ok := buckets[k.Pollutant]
	if !ok {
		b = &SummaryBucket{Details: []Detail{}}
		buckets[k.Pollutant] = b
	}
	return b
}

// resultPollutants returns the pollutants present in results in reporting
// order, or every supported pollutant when results is empty.
func resultPollutants(results []EmissionResult) []reference.Pollutant {
	if len(results) == 0 {
		return append([]reference.Pollutant(nil), reference.Pollutants...)
	}
	seen := make(map[reference.Pollutant]bool)
	var out []reference.Pollutant
	for _, r := range results {
		if !seen[r.Pollutant] {
			seen[r.Pollutant] = true
			out = append(out, r.Pollutant)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return pollutantRank(out[i]) < pollutantRank(out[j]) })
	return out
}

func detailFor(r EmissionResult) Detail {
	d := Detail{
		RowIndex:          r.RowIndex,
		RecordID:          r.RecordID,
		SourceDescription: r.SourceDescription,
		VehicleType:       r.VehicleType,
		Region:            r.Region,
		Emissions:         r.Emissions,
		EmissionFactor:    r.EmissionFactor,
		Status:            r.Status,
		Message:           r.Message,
	}
	if r.Path == PathFuel {
		d.FuelUsed = r.FuelType
		d.FuelAmount = r.FuelAmount
		d.UnitOfFuelAmount = r.FuelUnit
	} else {
		d.DistanceTravelled = r.Distance
		d.TotalWeightOfFreight = r.FreightTonnes
		d.UnitsOfMeasurement = r.MeasurementUnit
	}
	return d
}
