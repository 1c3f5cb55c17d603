package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatmapd/internal/cache"
	"heatmapd/internal/models"
	"heatmapd/internal/strava"
	"heatmapd/internal/structures"
	"heatmapd/internal/testutil"
)

type stubRepository struct {
	athlete    *models.Athlete
	activities []models.ActivitySummary
	err        error
	gotDays    int
}

func (s *stubRepository) Athlete(_ context.Context) (*models.Athlete, error) {
	return s.athlete, s.err
}

func (s *stubRepository) ListCyclingActivities(_ context.Context, daysBack int) ([]models.ActivitySummary, error) {
	s.gotDays = daysBack
	return s.activities, s.err
}

type stubPipeline struct {
	result *strava.StreamResult
	err    error
	gotIDs []int64
}

func (s *stubPipeline) FetchDetailedStreams(_ context.Context, ids []int64) (*strava.StreamResult, error) {
	s.gotIDs = ids
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &strava.StreamResult{}, nil
}

func serviceConfig() *structures.Config {
	return &structures.Config{
		Strava: structures.StravaConfig{DaysBack: 365, StreamLimit: 50},
		Map: structures.MapConfig{
			DefaultCenterLat: 40.7128,
			DefaultCenterLon: -74.0060,
			DefaultZoom:      12,
			GridSize:         50,
			MaxRoutes:        20,
			MaxHeatPoints:    20000,
		},
	}
}

func serviceDiskCache(t *testing.T) *cache.DiskCache {
	t.Helper()
	conf := &structures.Config{
		DiskCache: structures.DiskCacheConfig{Dir: t.TempDir(), TTL: time.Hour},
	}
	compressor, err := cache.NewZstdCompressor()
	require.NoError(t, err)
	c, err := cache.NewDiskCache(conf, compressor, &testutil.MockLogger{})
	require.NoError(t, err)
	return c
}

func newTestService(t *testing.T, repo *stubRepository, pipeline *stubPipeline) (HeatmapServiceInterface, *cache.DiskCache) {
	t.Helper()
	disk := serviceDiskCache(t)
	svc := NewHeatmapService(serviceConfig(), repo, pipeline, disk, &testutil.MockLogger{})
	return svc, disk
}

func summaryAt(id int64, start time.Time) models.ActivitySummary {
	return models.ActivitySummary{ID: id, Type: "Ride", StartDate: start, HasPolyline: true}
}

func telemetryStream(id int64, coords int) models.ActivityStream {
	s := models.ActivityStream{ID: id}
	for i := 0; i < coords; i++ {
		s.Coordinates = append(s.Coordinates, models.LatLng{
			Lat: 47.36 + float64(i)*0.001,
			Lng: 8.54 + float64(i)*0.001,
		})
		s.Altitude = append(s.Altitude, 400+float64(i))
		s.Velocity = append(s.Velocity, 5+float64(i)*0.1)
	}
	return s
}

func TestActivities_ZeroDaysUsesConfiguredWindow(t *testing.T) {
	repo := &stubRepository{}
	svc, _ := newTestService(t, repo, &stubPipeline{})

	_, err := svc.Activities(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 365, repo.gotDays)

	_, err = svc.Activities(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 30, repo.gotDays)
}

func TestHeatmaps_DefaultLayersAndView(t *testing.T) {
	now := time.Now()
	repo := &stubRepository{activities: []models.ActivitySummary{summaryAt(1, now)}}
	pipeline := &stubPipeline{result: &strava.StreamResult{
		Streams: []models.ActivityStream{telemetryStream(1, 30)},
	}}
	svc, _ := newTestService(t, repo, pipeline)

	bundle, err := svc.Heatmaps(context.Background(), 30, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, bundle.Activities)
	assert.Empty(t, bundle.FailedIDs)
	assert.NotEmpty(t, bundle.Basic)
	assert.NotEmpty(t, bundle.Speed)
	assert.NotEmpty(t, bundle.Elevation)
	assert.NotEmpty(t, bundle.Routes)
	require.NotNil(t, bundle.View.Bounds)
	assert.InDelta(t, 47.37, bundle.View.CenterLat, 0.1)
}

func TestHeatmaps_NoStreamsFallsBackToDefaultView(t *testing.T) {
	repo := &stubRepository{}
	pipeline := &stubPipeline{result: &strava.StreamResult{}}
	svc, _ := newTestService(t, repo, pipeline)

	bundle, err := svc.Heatmaps(context.Background(), 30, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, bundle.Activities)
	assert.InDelta(t, 40.7128, bundle.View.CenterLat, 1e-9)
	assert.InDelta(t, -74.0060, bundle.View.CenterLng, 1e-9)
	assert.Equal(t, 12, bundle.View.Zoom)
	assert.Nil(t, bundle.View.Bounds)
}

func TestHeatmaps_LimitPicksNewestActivities(t *testing.T) {
	now := time.Now()
	repo := &stubRepository{activities: []models.ActivitySummary{
		summaryAt(1, now.Add(-72*time.Hour)),
		summaryAt(2, now),
		summaryAt(3, now.Add(-24*time.Hour)),
	}}
	pipeline := &stubPipeline{result: &strava.StreamResult{}}
	svc, _ := newTestService(t, repo, pipeline)

	_, err := svc.Heatmaps(context.Background(), 30, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, pipeline.gotIDs)
}

func TestHeatmaps_OnlyRequestedLayersBuilt(t *testing.T) {
	repo := &stubRepository{activities: []models.ActivitySummary{summaryAt(1, time.Now())}}
	pipeline := &stubPipeline{result: &strava.StreamResult{
		Streams: []models.ActivityStream{telemetryStream(1, 30)},
	}}
	svc, _ := newTestService(t, repo, pipeline)

	bundle, err := svc.Heatmaps(context.Background(), 30, 0, []string{"speed"})
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.Speed)
	assert.Empty(t, bundle.Basic)
	assert.Empty(t, bundle.Elevation)
	assert.Empty(t, bundle.Routes)
}

func TestHeatmaps_UnknownMapTypeIgnored(t *testing.T) {
	repo := &stubRepository{activities: []models.ActivitySummary{summaryAt(1, time.Now())}}
	pipeline := &stubPipeline{result: &strava.StreamResult{
		Streams: []models.ActivityStream{telemetryStream(1, 30)},
	}}
	logger := &testutil.MockLogger{}
	svc := NewHeatmapService(serviceConfig(), repo, pipeline, serviceDiskCache(t), logger)

	bundle, err := svc.Heatmaps(context.Background(), 30, 0, []string{"terrain3d", "basic"})
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.Basic)
	assert.Equal(t, 1, logger.Count("warn"))
}

func TestHeatmaps_PropagatesFailures(t *testing.T) {
	repoErr := errors.New("listing down")
	svc, _ := newTestService(t, &stubRepository{err: repoErr}, &stubPipeline{})
	_, err := svc.Heatmaps(context.Background(), 30, 0, nil)
	assert.ErrorIs(t, err, repoErr)

	pipeErr := errors.New("streams down")
	svc, _ = newTestService(t, &stubRepository{}, &stubPipeline{err: pipeErr})
	_, err = svc.Heatmaps(context.Background(), 30, 0, nil)
	assert.ErrorIs(t, err, pipeErr)
}

func TestSpeedLayer_StridesAndSkipsStationaryPoints(t *testing.T) {
	stream := telemetryStream(1, 30)
	stream.Velocity[0] = 0 // stationary fix at the first stride index

	repo := &stubRepository{activities: []models.ActivitySummary{summaryAt(1, time.Now())}}
	pipeline := &stubPipeline{result: &strava.StreamResult{Streams: []models.ActivityStream{stream}}}
	svc, _ := newTestService(t, repo, pipeline)

	bundle, err := svc.Heatmaps(context.Background(), 30, 0, []string{"speed"})
	require.NoError(t, err)

	// Stride indexes 0, 10, 20; index 0 is skipped for zero velocity.
	require.Len(t, bundle.Speed, 2)
	for _, p := range bundle.Speed {
		assert.Greater(t, p.Value, 0.0)
		assert.NotEmpty(t, p.Color)
		assert.NotEmpty(t, p.Label)
	}
}

func TestElevationLayer_NoAltitudeDataYieldsNoLayer(t *testing.T) {
	stream := telemetryStream(1, 30)
	stream.Altitude = nil

	repo := &stubRepository{activities: []models.ActivitySummary{summaryAt(1, time.Now())}}
	pipeline := &stubPipeline{result: &strava.StreamResult{Streams: []models.ActivityStream{stream}}}
	svc, _ := newTestService(t, repo, pipeline)

	bundle, err := svc.Heatmaps(context.Background(), 30, 0, []string{"elevation"})
	require.NoError(t, err)
	assert.Empty(t, bundle.Elevation)
}

func TestRoutesLayer_RotatesPaletteAndCapsCount(t *testing.T) {
	conf := serviceConfig()
	conf.Map.MaxRoutes = 2

	streams := []models.ActivityStream{
		telemetryStream(1, 12),
		telemetryStream(2, 12),
		telemetryStream(3, 12),
	}
	repo := &stubRepository{activities: []models.ActivitySummary{summaryAt(1, time.Now())}}
	pipeline := &stubPipeline{result: &strava.StreamResult{Streams: streams}}
	svc := NewHeatmapService(conf, repo, pipeline, serviceDiskCache(t), &testutil.MockLogger{})

	bundle, err := svc.Heatmaps(context.Background(), 30, 0, []string{"routes"})
	require.NoError(t, err)

	require.Len(t, bundle.Routes, 2)
	assert.Equal(t, int64(1), bundle.Routes[0].ActivityID)
	assert.NotEqual(t, bundle.Routes[0].Color, bundle.Routes[1].Color)
	assert.Greater(t, bundle.Routes[0].DistanceKm, 0.0)
	assert.Equal(t, 12, bundle.Routes[0].PointCount)
}

func TestInsights_RollUp(t *testing.T) {
	repo := &stubRepository{activities: []models.ActivitySummary{
		{ID: 1, Distance: 20000, MovingTime: 3600, AverageSpeed: 5, ElevationGain: 300},
		{ID: 2, Distance: 40000, MovingTime: 7200, AverageSpeed: 10, ElevationGain: 700},
	}}
	svc, _ := newTestService(t, repo, &stubPipeline{})

	ins, err := svc.Insights(context.Background(), 365)
	require.NoError(t, err)

	assert.Equal(t, 2, ins.TotalActivities)
	assert.InDelta(t, 60.0, ins.TotalDistanceKm, 1e-9)
	assert.InDelta(t, 3.0, ins.TotalTimeHours, 1e-9)
	assert.InDelta(t, 1000.0, ins.TotalElevationM, 1e-9)
	assert.InDelta(t, 30.0, ins.AvgDistanceKm, 1e-9)
	assert.InDelta(t, 27.0, ins.AvgSpeedKmh, 1e-9)
	assert.InDelta(t, 40.0, ins.MaxDistanceKm, 1e-9)
	assert.InDelta(t, 36.0, ins.MaxSpeedKmh, 1e-9)
}

func TestInsights_EmptyWindow(t *testing.T) {
	svc, _ := newTestService(t, &stubRepository{}, &stubPipeline{})

	ins, err := svc.Insights(context.Background(), 365)
	require.NoError(t, err)

	assert.Equal(t, 0, ins.TotalActivities)
	assert.Zero(t, ins.TotalDistanceKm)
	assert.Zero(t, ins.AvgSpeedKmh)
}

func TestClearCache_DropsDiskRecords(t *testing.T) {
	svc, disk := newTestService(t, &stubRepository{}, &stubPipeline{})

	require.NoError(t, disk.Set("k", []byte("payload")))
	require.NoError(t, svc.ClearCache())

	_, ok := disk.Get("k")
	assert.False(t, ok)
}
