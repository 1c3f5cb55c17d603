package geo

import (
	"fmt"
	"math"
)

// Bucket is one classification range: values strictly below UpperBound get
// Label/Color. Buckets must be sorted ascending by UpperBound.
type Bucket struct {
	UpperBound float64
	Label      string
	Color      string
}

// SpeedBuckets classify speeds in km/h for the speed layer.
var SpeedBuckets = []Bucket{
	{UpperBound: 15, Label: "very_slow", Color: "blue"},
	{UpperBound: 25, Label: "slow", Color: "green"},
	{UpperBound: 35, Label: "moderate", Color: "orange"},
	{UpperBound: math.Inf(1), Label: "fast", Color: "red"},
}

// Classify returns the first bucket whose upper bound exceeds value. The
// last bucket catches everything when its bound is +Inf; otherwise values
// above all bounds land in the last bucket too.
func Classify(value float64, buckets []Bucket) Bucket {
	for _, b := range buckets {
		if value < b.UpperBound {
			return b
		}
	}
	return buckets[len(buckets)-1]
}

// MetersPerSecToKmh converts the API's velocity unit to km/h.
func MetersPerSecToKmh(v float64) float64 {
	return v * 3.6
}

// Terrain color ramp endpoints for the elevation layer: low ground is
// brown, high ground is white.
var (
	elevationLow  = [3]uint8{0x8b, 0x45, 0x13}
	elevationHigh = [3]uint8{0xff, 0xff, 0xff}
)

// ElevationColor linearly interpolates the terrain ramp for elev within
// [minElev, maxElev]. A zero range pins the midpoint of the ramp.
func ElevationColor(elev, minElev, maxElev float64) string {
	t := 0.5
	if maxElev > minElev {
		t = (elev - minElev) / (maxElev - minElev)
		t = math.Max(0, math.Min(1, t))
	}
	r := lerpChannel(elevationLow[0], elevationHigh[0], t)
	g := lerpChannel(elevationLow[1], elevationHigh[1], t)
	b := lerpChannel(elevationLow[2], elevationHigh[2], t)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// RouteColors is the rotating palette for the routes layer.
var RouteColors = []string{
	"red", "blue", "green", "purple", "orange", "darkred", "lightred",
	"beige", "darkblue", "darkgreen", "cadetblue", "darkpurple", "white",
	"pink", "lightblue", "lightgreen", "gray", "black", "lightgray",
}
