package models

import "time"

// Activity types that count as cycling. Everything else is dropped by the
// repository filter.
const (
	TypeRide        = "Ride"
	TypeVirtualRide = "VirtualRide"
	TypeEBikeRide   = "EBikeRide"
)

// MinActivityDistanceMeters filters out trivial recordings (GPS noise,
// indoor spin-ups) that carry no usable route data.
const MinActivityDistanceMeters = 500.0

func IsCyclingType(t string) bool {
	switch t {
	case TypeRide, TypeVirtualRide, TypeEBikeRide:
		return true
	}
	return false
}

// ActivitySummary is the normalized form of one entry from
// GET /athlete/activities. Fields keep the raw API units (meters, seconds,
// m/s); unit conversions are presentation-time computations so the cached
// form stays stable across formula changes.
type ActivitySummary struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Distance      float64   `json:"distance"`
	MovingTime    int64     `json:"moving_time"`
	AverageSpeed  float64   `json:"average_speed"`
	ElevationGain float64   `json:"total_elevation_gain"`
	StartDate     time.Time `json:"start_date"`
	HasPolyline   bool      `json:"has_polyline"`
}

func (a *ActivitySummary) DistanceKm() float64 {
	return a.Distance / 1000
}

func (a *ActivitySummary) MovingTimeHours() float64 {
	return float64(a.MovingTime) / 3600
}

func (a *ActivitySummary) AverageSpeedKmh() float64 {
	return a.AverageSpeed * 3.6
}

// RawActivity mirrors the wire shape of one /athlete/activities entry.
// Only the fields the filter and the summary need are decoded.
type RawActivity struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Distance      float64   `json:"distance"`
	MovingTime    int64     `json:"moving_time"`
	AverageSpeed  float64   `json:"average_speed"`
	ElevationGain float64   `json:"total_elevation_gain"`
	StartDate     time.Time `json:"start_date"`
	Map           struct {
		SummaryPolyline string `json:"summary_polyline"`
	} `json:"map"`
}

// Keep reports whether a raw entry survives the cycling filter: cycling
// type, a non-empty summary polyline and a distance above the floor.
func (r *RawActivity) Keep() bool {
	return IsCyclingType(r.Type) &&
		r.Map.SummaryPolyline != "" &&
		r.Distance > MinActivityDistanceMeters
}

func (r *RawActivity) Summary() ActivitySummary {
	return ActivitySummary{
		ID:            r.ID,
		Name:          r.Name,
		Type:          r.Type,
		Distance:      r.Distance,
		MovingTime:    r.MovingTime,
		AverageSpeed:  r.AverageSpeed,
		ElevationGain: r.ElevationGain,
		StartDate:     r.StartDate,
		HasPolyline:   r.Map.SummaryPolyline != "",
	}
}

// Athlete is the profile object from GET /athlete.
type Athlete struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	City      string `json:"city"`
	Country   string `json:"country"`
}
