package models

// HeatPoint is one weighted coordinate in a heat layer.
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"`
}

// ColoredPoint is one classified coordinate (speed or elevation layers).
type ColoredPoint struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
	Label string  `json:"label,omitempty"`
}

// Route is one activity's polyline for the routes layer.
type Route struct {
	ActivityID int64    `json:"activity_id"`
	Color      string   `json:"color"`
	Points     []LatLng `json:"points"`
	DistanceKm float64  `json:"distance_km"`
	PointCount int      `json:"point_count"`
}

// Bounds is the geographic envelope of a point set.
type Bounds struct {
	MinLat    float64 `json:"min_lat"`
	MaxLat    float64 `json:"max_lat"`
	MinLng    float64 `json:"min_lng"`
	MaxLng    float64 `json:"max_lng"`
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
}

// MapView is the shared camera setup for every layer: density-weighted
// center, span-derived zoom and the bounding box (absent when no points).
type MapView struct {
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	Zoom      int     `json:"zoom"`
	Bounds    *Bounds `json:"bounds,omitempty"`
}

// HeatmapBundle is the render-ready aggregate handed to the external
// renderer. Only the requested layers are populated.
type HeatmapBundle struct {
	View       MapView        `json:"view"`
	Activities int            `json:"activities"`
	FailedIDs  []int64        `json:"failed_ids,omitempty"`
	Basic      []HeatPoint    `json:"basic,omitempty"`
	Speed      []ColoredPoint `json:"speed,omitempty"`
	Elevation  []ColoredPoint `json:"elevation,omitempty"`
	Routes     []Route        `json:"routes,omitempty"`
}

// Insights is the tabular roll-up of a summary table.
type Insights struct {
	TotalActivities int     `json:"total_activities"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalTimeHours  float64 `json:"total_time_hours"`
	AvgDistanceKm   float64 `json:"avg_distance_km"`
	AvgSpeedKmh     float64 `json:"avg_speed_kmh"`
	MaxDistanceKm   float64 `json:"max_distance_km"`
	MaxSpeedKmh     float64 `json:"max_speed_kmh"`
	TotalElevationM float64 `json:"total_elevation_m"`
}
