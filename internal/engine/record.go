package engine

import (
	"strings"

	"github.com/rshade/ghgfreight/internal/logging"
)

// Activity data types accepted on input.
const (
	ActivityFuelUse           = "Fuel Use"
	ActivityDistance          = "Distance"
	ActivityFuelAndDistance   = "Fuel Use and Vehicle Distance"
	ActivityCustomVehicle     = "Custom vehicle"
	ActivityPassengerDistance = "Passenger Distance (e.g. Public Transport)"
	ActivityWeightDistance    = "Weight Distance (e.g. Freight Transport)"
	ActivityVehicleDistance   = "Vehicle Distance (e.g. Road Transport)"
	unknownCategory           = "Unknown"
)

// ActivityRecord is one row of supplier activity data. Optional numeric
// inputs are pointers so that "absent" and "zero" stay distinct.
type ActivityRecord struct {
	ID                string   `json:"id"`
	Index             int      `json:"row_index"`
	SourceDescription string   `json:"source_description,omitempty"`
	Region            string   `json:"region"`
	ModeOfTransport   string   `json:"mode_of_transport"`
	Scope             string   `json:"scope"`
	ActivityType      string   `json:"type_of_activity_data"`
	VehicleType       string   `json:"vehicle_type,omitempty"`
	Distance          *float64 `json:"distance_travelled,omitempty"`
	FreightTonnes     *float64 `json:"total_weight_of_freight_in_tonne,omitempty"`
	Passengers        *int     `json:"num_of_passenger,omitempty"`
	MeasurementUnit   string   `json:"units_of_measurement,omitempty"`
	FuelType          string   `json:"fuel_used,omitempty"`
	FuelAmount        *float64 `json:"fuel_amount,omitempty"`
	FuelUnit          string   `json:"unit_of_fuel_amount,omitempty"`

	effectiveType string
}

// NewActivityRecord copies in, assigns its batch index, generates an ID when
// none is set, and fixes the effective activity type.
func NewActivityRecord(index int, in ActivityRecord) *ActivityRecord {
	r := in
	r.Index = index
	if strings.TrimSpace(r.ID) == "" {
		r.ID = logging.NewID()
	}
	r.effectiveType = deriveActivityType(r.ActivityType, r.MeasurementUnit)
	return &r
}

// EffectiveActivityType returns the activity type used for reporting.
// "Custom vehicle" records are reclassified from their measurement unit;
// every other type is returned unchanged.
func (r *ActivityRecord) EffectiveActivityType() string {
	if r.effectiveType != "" {
		return r.effectiveType
	}
	return deriveActivityType(r.ActivityType, r.MeasurementUnit)
}

func deriveActivityType(activityType, unit string) string {
	if !strings.EqualFold(strings.TrimSpace(activityType), ActivityCustomVehicle) {
		return activityType
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "passenger mile", "passenger kilometer":
		return ActivityPassengerDistance
	case "tonne mile", "tonne kilometer":
		return ActivityWeightDistance
	default:
		return ActivityVehicleDistance
	}
}

// Path reports which formula applies: fuel when a fuel type and amount are
// both present, distance otherwise.
func (r *ActivityRecord) Path() CalculationPath {
	if strings.TrimSpace(r.FuelType) != "" && r.FuelAmount != nil {
		return PathFuel
	}
	return PathDistance
}

// modeLabel and scopeLabel return the grouping keys, "Unknown" when blank.
func (r *ActivityRecord) modeLabel() string  { return labelOrUnknown(r.ModeOfTransport) }
func (r *ActivityRecord) scopeLabel() string { return labelOrUnknown(r.Scope) }

func labelOrUnknown(s string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return unknownCategory
}
