package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func rawRide(typ string, distance float64, polyline string) *RawActivity {
	r := RawActivity{
		ID:           1,
		Type:         typ,
		Distance:     distance,
		MovingTime:   3600,
		AverageSpeed: 6.5,
		StartDate:    time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	r.Map.SummaryPolyline = polyline
	return &r
}

func TestIsCyclingType(t *testing.T) {
	assert.True(t, IsCyclingType(TypeRide))
	assert.True(t, IsCyclingType(TypeVirtualRide))
	assert.True(t, IsCyclingType(TypeEBikeRide))
	assert.False(t, IsCyclingType("Run"))
	assert.False(t, IsCyclingType("Hike"))
	assert.False(t, IsCyclingType(""))
}

func TestRawActivity_Keep(t *testing.T) {
	assert.True(t, rawRide("Ride", 5000, "poly").Keep())

	assert.False(t, rawRide("Run", 5000, "poly").Keep(), "non-cycling type")
	assert.False(t, rawRide("Ride", 400, "poly").Keep(), "below distance floor")
	assert.False(t, rawRide("Ride", 5000, "").Keep(), "no polyline")
	assert.False(t, rawRide("Ride", 500, "poly").Keep(), "exactly at floor is excluded")
}

func TestRawActivity_SummaryKeepsRawUnits(t *testing.T) {
	raw := rawRide("Ride", 21500, "poly")
	s := raw.Summary()

	assert.Equal(t, 21500.0, s.Distance)
	assert.Equal(t, int64(3600), s.MovingTime)
	assert.Equal(t, 6.5, s.AverageSpeed)
	assert.True(t, s.HasPolyline)
}

func TestActivitySummary_DerivedUnits(t *testing.T) {
	s := ActivitySummary{Distance: 21500, MovingTime: 5400, AverageSpeed: 10}

	assert.InDelta(t, 21.5, s.DistanceKm(), 1e-9)
	assert.InDelta(t, 1.5, s.MovingTimeHours(), 1e-9)
	assert.InDelta(t, 36.0, s.AverageSpeedKmh(), 1e-9)
}
