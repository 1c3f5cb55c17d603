package geo

import (
	"math"

	"github.com/golang/geo/s2"

	"heatmapd/internal/models"
)

const earthRadiusMeters = 6371000.0

// Point is a plain lat/lng pair used for map centers.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DensityCenter returns the centroid of the most coordinate-dense cell in a
// gridSize x gridSize histogram over the bounding box of all coordinates.
// With fewer than 2 distinct points it degenerates to the arithmetic mean,
// and to fallback when there are no coordinates at all. Centering on the
// densest cell keeps the map over where riding actually happened instead of
// the midpoint of two far-apart regions.
func DensityCenter(streams []models.ActivityStream, gridSize int, fallback Point) Point {
	coords := collect(streams)
	if len(coords) == 0 {
		return fallback
	}
	if gridSize < 2 || !hasDistinct(coords) {
		return meanCenter(coords)
	}

	minLat, maxLat, minLng, maxLng := envelope(coords)
	latStep := (maxLat - minLat) / float64(gridSize)
	lngStep := (maxLng - minLng) / float64(gridSize)
	if latStep == 0 || lngStep == 0 {
		return meanCenter(coords)
	}

	bins := make([]int, gridSize*gridSize)
	for _, c := range coords {
		row := int((c.Lat - minLat) / latStep)
		col := int((c.Lng - minLng) / lngStep)
		if row >= gridSize {
			row = gridSize - 1
		}
		if col >= gridSize {
			col = gridSize - 1
		}
		bins[row*gridSize+col]++
	}

	best := 0
	for i, n := range bins {
		if n > bins[best] {
			best = i
		}
	}

	row := best / gridSize
	col := best % gridSize
	return Point{
		Lat: minLat + (float64(row)+0.5)*latStep,
		Lng: minLng + (float64(col)+0.5)*lngStep,
	}
}

// OptimalZoom maps the larger of the latitude/longitude spans to a discrete
// zoom level. Larger area means an equal or smaller zoom number.
func OptimalZoom(streams []models.ActivityStream, def int) int {
	coords := collect(streams)
	if len(coords) == 0 {
		return def
	}

	minLat, maxLat, minLng, maxLng := envelope(coords)
	span := math.Max(maxLat-minLat, maxLng-minLng)

	switch {
	case span > 2.0:
		return 8
	case span > 1.0:
		return 9
	case span > 0.5:
		return 10
	case span > 0.2:
		return 11
	case span > 0.1:
		return 12
	case span > 0.05:
		return 13
	default:
		return 14
	}
}

// BoundsOf returns the geographic envelope plus arithmetic-mean center of
// all coordinates; ok is false when there are none.
func BoundsOf(streams []models.ActivityStream) (models.Bounds, bool) {
	coords := collect(streams)
	if len(coords) == 0 {
		return models.Bounds{}, false
	}

	minLat, maxLat, minLng, maxLng := envelope(coords)
	center := meanCenter(coords)
	return models.Bounds{
		MinLat:    minLat,
		MaxLat:    maxLat,
		MinLng:    minLng,
		MaxLng:    maxLng,
		CenterLat: center.Lat,
		CenterLng: center.Lng,
	}, true
}

// Sample keeps at most maxPoints elements using a deterministic stride, so
// identical input always yields identical output and resampling a sample is
// a no-op.
func Sample[T any](points []T, maxPoints int) []T {
	if maxPoints <= 0 || len(points) <= maxPoints {
		return points
	}
	stride := (len(points) + maxPoints - 1) / maxPoints
	out := make([]T, 0, (len(points)+stride-1)/stride)
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	return out
}

// TrackLength returns the haversine path length of a stream in meters.
func TrackLength(stream models.ActivityStream) float64 {
	total := 0.0
	for i := 1; i < len(stream.Coordinates); i++ {
		a := stream.Coordinates[i-1]
		b := stream.Coordinates[i]
		p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
		p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
		total += p1.Distance(p2).Radians() * earthRadiusMeters
	}
	return total
}

func collect(streams []models.ActivityStream) []models.LatLng {
	var coords []models.LatLng
	for _, s := range streams {
		coords = append(coords, s.Coordinates...)
	}
	return coords
}

func envelope(coords []models.LatLng) (minLat, maxLat, minLng, maxLng float64) {
	minLat, maxLat = coords[0].Lat, coords[0].Lat
	minLng, maxLng = coords[0].Lng, coords[0].Lng
	for _, c := range coords[1:] {
		minLat = math.Min(minLat, c.Lat)
		maxLat = math.Max(maxLat, c.Lat)
		minLng = math.Min(minLng, c.Lng)
		maxLng = math.Max(maxLng, c.Lng)
	}
	return
}

func meanCenter(coords []models.LatLng) Point {
	var latSum, lngSum float64
	for _, c := range coords {
		latSum += c.Lat
		lngSum += c.Lng
	}
	n := float64(len(coords))
	return Point{Lat: latSum / n, Lng: lngSum / n}
}

func hasDistinct(coords []models.LatLng) bool {
	for _, c := range coords[1:] {
		if c != coords[0] {
			return true
		}
	}
	return false
}
