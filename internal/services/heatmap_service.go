package services

import (
	"context"
	"sort"

	"heatmapd/internal/cache"
	"heatmapd/internal/geo"
	"heatmapd/internal/models"
	"heatmapd/internal/providers"
	"heatmapd/internal/strava"
	"heatmapd/internal/structures"
)

// Strides thin out the classified layers so the renderer is not flooded
// with one marker per GPS fix.
const (
	speedPointStride     = 10
	elevationPointStride = 15
)

var defaultMapTypes = []string{"basic", "speed", "elevation", "routes"}

type HeatmapServiceInterface interface {
	Athlete(ctx context.Context) (*models.Athlete, error)
	Activities(ctx context.Context, daysBack int) ([]models.ActivitySummary, error)
	Heatmaps(ctx context.Context, daysBack, limit int, mapTypes []string) (*models.HeatmapBundle, error)
	Insights(ctx context.Context, daysBack int) (*models.Insights, error)
	ClearCache() error
}

// HeatmapService glues the fetch layer to the aggregation engine: summary
// table in, render-ready bundle out. It owns no state beyond its
// collaborators; every call recomputes aggregates from fresh (or cached)
// API data.
type HeatmapService struct {
	conf     *structures.Config
	repo     strava.RepositoryInterface
	pipeline strava.PipelineInterface
	disk     *cache.DiskCache
	logger   providers.Logger
}

func NewHeatmapService(conf *structures.Config, repo strava.RepositoryInterface, pipeline strava.PipelineInterface, disk *cache.DiskCache, logger providers.Logger) HeatmapServiceInterface {
	return &HeatmapService{
		conf:     conf,
		repo:     repo,
		pipeline: pipeline,
		disk:     disk,
		logger:   logger,
	}
}

func (s *HeatmapService) Athlete(ctx context.Context) (*models.Athlete, error) {
	return s.repo.Athlete(ctx)
}

func (s *HeatmapService) Activities(ctx context.Context, daysBack int) ([]models.ActivitySummary, error) {
	if daysBack <= 0 {
		daysBack = s.conf.Strava.DaysBack
	}
	return s.repo.ListCyclingActivities(ctx, daysBack)
}

// Heatmaps builds the requested layers over the most recent activities.
// limit caps how many activities get their streams fetched; mapTypes
// defaults to all layers when empty.
func (s *HeatmapService) Heatmaps(ctx context.Context, daysBack, limit int, mapTypes []string) (*models.HeatmapBundle, error) {
	activities, err := s.Activities(ctx, daysBack)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.conf.Strava.StreamLimit
	}
	ids := recentActivityIDs(activities, limit)

	result, err := s.pipeline.FetchDetailedStreams(ctx, ids)
	if err != nil {
		return nil, err
	}

	bundle := &models.HeatmapBundle{
		View:       s.mapView(result.Streams),
		Activities: len(result.Streams),
		FailedIDs:  result.Failed,
	}

	if len(mapTypes) == 0 {
		mapTypes = defaultMapTypes
	}
	for _, kind := range mapTypes {
		switch kind {
		case "basic":
			bundle.Basic = s.basicLayer(result.Streams)
		case "speed":
			bundle.Speed = s.speedLayer(result.Streams)
		case "elevation":
			bundle.Elevation = s.elevationLayer(result.Streams)
		case "routes":
			bundle.Routes = s.routesLayer(result.Streams)
		default:
			s.logger.Warnf(providers.TypeApp, "Unknown map type %q ignored", kind)
		}
	}

	return bundle, nil
}

func (s *HeatmapService) Insights(ctx context.Context, daysBack int) (*models.Insights, error) {
	activities, err := s.Activities(ctx, daysBack)
	if err != nil {
		return nil, err
	}

	ins := &models.Insights{TotalActivities: len(activities)}
	for i := range activities {
		a := &activities[i]
		ins.TotalDistanceKm += a.DistanceKm()
		ins.TotalTimeHours += a.MovingTimeHours()
		ins.TotalElevationM += a.ElevationGain
		if a.DistanceKm() > ins.MaxDistanceKm {
			ins.MaxDistanceKm = a.DistanceKm()
		}
		if a.AverageSpeedKmh() > ins.MaxSpeedKmh {
			ins.MaxSpeedKmh = a.AverageSpeedKmh()
		}
		ins.AvgSpeedKmh += a.AverageSpeedKmh()
	}
	if len(activities) > 0 {
		n := float64(len(activities))
		ins.AvgDistanceKm = ins.TotalDistanceKm / n
		ins.AvgSpeedKmh = ins.AvgSpeedKmh / n
	} else {
		ins.AvgSpeedKmh = 0
	}
	return ins, nil
}

func (s *HeatmapService) ClearCache() error {
	return s.disk.Clear()
}

func (s *HeatmapService) mapView(streams []models.ActivityStream) models.MapView {
	fallback := geo.Point{Lat: s.conf.Map.DefaultCenterLat, Lng: s.conf.Map.DefaultCenterLon}
	center := geo.DensityCenter(streams, s.conf.Map.GridSize, fallback)
	view := models.MapView{
		CenterLat: center.Lat,
		CenterLng: center.Lng,
		Zoom:      geo.OptimalZoom(streams, s.conf.Map.DefaultZoom),
	}
	if bounds, ok := geo.BoundsOf(streams); ok {
		view.Bounds = &bounds
	}
	return view
}

func (s *HeatmapService) basicLayer(streams []models.ActivityStream) []models.HeatPoint {
	var points []models.HeatPoint
	for _, stream := range streams {
		for _, c := range stream.Coordinates {
			points = append(points, models.HeatPoint{Lat: c.Lat, Lng: c.Lng, Weight: 1})
		}
	}
	return geo.Sample(points, s.conf.Map.MaxHeatPoints)
}

func (s *HeatmapService) speedLayer(streams []models.ActivityStream) []models.ColoredPoint {
	var points []models.ColoredPoint
	for _, stream := range streams {
		n := min(len(stream.Coordinates), len(stream.Velocity))
		for i := 0; i < n; i += speedPointStride {
			if stream.Velocity[i] <= 0 {
				continue
			}
			kmh := geo.MetersPerSecToKmh(stream.Velocity[i])
			bucket := geo.Classify(kmh, geo.SpeedBuckets)
			points = append(points, models.ColoredPoint{
				Lat:   stream.Coordinates[i].Lat,
				Lng:   stream.Coordinates[i].Lng,
				Value: kmh,
				Color: bucket.Color,
				Label: bucket.Label,
			})
		}
	}
	return points
}

func (s *HeatmapService) elevationLayer(streams []models.ActivityStream) []models.ColoredPoint {
	minElev, maxElev, found := elevationRange(streams)
	if !found {
		return nil
	}

	var points []models.ColoredPoint
	for _, stream := range streams {
		n := min(len(stream.Coordinates), len(stream.Altitude))
		for i := 0; i < n; i += elevationPointStride {
			points = append(points, models.ColoredPoint{
				Lat:   stream.Coordinates[i].Lat,
				Lng:   stream.Coordinates[i].Lng,
				Value: stream.Altitude[i],
				Color: geo.ElevationColor(stream.Altitude[i], minElev, maxElev),
			})
		}
	}
	return points
}

func (s *HeatmapService) routesLayer(streams []models.ActivityStream) []models.Route {
	limit := min(len(streams), s.conf.Map.MaxRoutes)
	routes := make([]models.Route, 0, limit)
	for i := 0; i < limit; i++ {
		stream := streams[i]
		routes = append(routes, models.Route{
			ActivityID: stream.ID,
			Color:      geo.RouteColors[i%len(geo.RouteColors)],
			Points:     stream.Coordinates,
			DistanceKm: geo.TrackLength(stream) / 1000,
			PointCount: len(stream.Coordinates),
		})
	}
	return routes
}

// recentActivityIDs picks the newest limit activities by start date.
func recentActivityIDs(activities []models.ActivitySummary, limit int) []int64 {
	sorted := make([]models.ActivitySummary, len(activities))
	copy(sorted, activities)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate.After(sorted[j].StartDate)
	})

	if limit > len(sorted) {
		limit = len(sorted)
	}
	ids := make([]int64, 0, limit)
	for i := 0; i < limit; i++ {
		ids = append(ids, sorted[i].ID)
	}
	return ids
}

func elevationRange(streams []models.ActivityStream) (minElev, maxElev float64, found bool) {
	for _, stream := range streams {
		for _, e := range stream.Altitude {
			if !found {
				minElev, maxElev = e, e
				found = true
				continue
			}
			if e < minElev {
				minElev = e
			}
			if e > maxElev {
				maxElev = e
			}
		}
	}
	return
}
