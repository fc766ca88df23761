package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivityRecord_EffectiveActivityType(t *testing.T) {
	tests := []struct {
		activity string
		unit     string
		want     string
	}{
		{ActivityCustomVehicle, "Passenger Mile", ActivityPassengerDistance},
		{"custom vehicle", "passenger kilometer", ActivityPassengerDistance},
		{ActivityCustomVehicle, "Tonne Mile", ActivityWeightDistance},
		{ActivityCustomVehicle, " tonne kilometer ", ActivityWeightDistance},
		{ActivityCustomVehicle, "Vehicle Mile", ActivityVehicleDistance},
		{ActivityCustomVehicle, "", ActivityVehicleDistance},
		{ActivityDistance, "Passenger Mile", ActivityDistance},
		{ActivityFuelUse, "", ActivityFuelUse},
	}
	for _, tt := range tests {
		t.Run(tt.activity+"/"+tt.unit, func(t *testing.T) {
			rec := NewActivityRecord(0, ActivityRecord{ActivityType: tt.activity, MeasurementUnit: tt.unit})
			assert.Equal(t, tt.want, rec.EffectiveActivityType())

			bare := &ActivityRecord{ActivityType: tt.activity, MeasurementUnit: tt.unit}
			assert.Equal(t, tt.want, bare.EffectiveActivityType())
		})
	}
}

func TestNewActivityRecord(t *testing.T) {
	in := ActivityRecord{Index: 99, Region: "US"}
	rec := NewActivityRecord(4, in)

	assert.Equal(t, 4, rec.Index)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 99, in.Index, "input is copied")

	other := NewActivityRecord(5, in)
	assert.NotEqual(t, rec.ID, other.ID)

	kept := NewActivityRecord(0, ActivityRecord{ID: "row-1"})
	assert.Equal(t, "row-1", kept.ID)
}

func TestActivityRecord_Path(t *testing.T) {
	assert.Equal(t, PathFuel, (&ActivityRecord{FuelType: "Diesel", FuelAmount: ptr(0.0)}).Path())
	assert.Equal(t, PathDistance, (&ActivityRecord{FuelType: "Diesel"}).Path())
	assert.Equal(t, PathDistance, (&ActivityRecord{FuelType: "  ", FuelAmount: ptr(3.0)}).Path())
	assert.Equal(t, PathDistance, (&ActivityRecord{}).Path())
}

func TestStatus(t *testing.T) {
	assert.NoError(t, StatusSuccess.Err())
	assert.ErrorIs(t, StatusNoData.Err(), ErrNoData)
	assert.ErrorIs(t, StatusUnresolvedUnit.Err(), ErrUnresolvedUnit)
	assert.ErrorIs(t, StatusError.Err(), ErrCalculation)
	assert.ErrorIs(t, Status("bogus").Err(), ErrCalculation)
	assert.Equal(t, "?", StatusIcon(StatusUnresolvedUnit))
	assert.Equal(t, "no_data", StatusNoData.String())
}
