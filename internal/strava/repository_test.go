package strava

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatmapd/internal/cache"
	"heatmapd/internal/models"
	"heatmapd/internal/structures"
	"heatmapd/internal/testutil"
)

func newTestDiskCache(t *testing.T) *cache.DiskCache {
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

func repoConfig() *structures.Config {
	return &structures.Config{
		Strava: structures.StravaConfig{
			AccessToken: "test-token",
			PerPage:     200,
		},
	}
}

func newTestRepository(t *testing.T, client ClientInterface) RepositoryInterface {
	t.Helper()
	return NewRepository(repoConfig(), client, newTestDiskCache(t), &testutil.MockLogger{}, &testutil.MockMetrics{})
}

func listingPage(entries ...models.RawActivity) func(out any) {
	return func(out any) {
		data, _ := json.Marshal(entries)
		_ = json.Unmarshal(data, out)
	}
}

func rawActivity(id int64, typ string, distance float64, polyline string) models.RawActivity {
	r := models.RawActivity{
		ID:         id,
		Name:       "activity",
		Type:       typ,
		Distance:   distance,
		MovingTime: 3600,
		StartDate:  time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	r.Map.SummaryPolyline = polyline
	return r
}

func TestRepository_FiltersNonCyclingAndShortActivities(t *testing.T) {
	client := &testutil.MockClient{
		Handler: func(path string, query url.Values, out any) error {
			if query.Get("page") != "1" {
				listingPage()(out)
				return nil
			}
			listingPage(
				rawActivity(1, "Run", 10000, "poly"),
				rawActivity(2, "Ride", 400, "poly"),
				rawActivity(3, "Ride", 5000, ""),
				rawActivity(4, "Ride", 5000, "poly"),
			)(out)
			return nil
		},
	}
	repo := newTestRepository(t, client)

	summaries, err := repo.ListCyclingActivities(context.Background(), 365)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(4), summaries[0].ID)
}

func TestRepository_PaginatesUntilShortPage(t *testing.T) {
	conf := repoConfig()
	conf.Strava.PerPage = 2

	client := &testutil.MockClient{
		Handler: func(path string, query url.Values, out any) error {
			switch query.Get("page") {
			case "1":
				listingPage(
					rawActivity(1, "Ride", 5000, "poly"),
					rawActivity(2, "Ride", 6000, "poly"),
				)(out)
			case "2":
				listingPage(rawActivity(3, "Ride", 7000, "poly"))(out)
			default:
				t.Fatalf("unexpected page %q", query.Get("page"))
			}
			return nil
		},
	}
	repo := NewRepository(conf, client, newTestDiskCache(t), &testutil.MockLogger{}, &testutil.MockMetrics{})

	summaries, err := repo.ListCyclingActivities(context.Background(), 30)
	require.NoError(t, err)
	assert.Len(t, summaries, 3)
	assert.Len(t, client.Calls, 2, "short page stops pagination")
}

func TestRepository_CachedListingSkipsNetwork(t *testing.T) {
	client := &testutil.MockClient{
		Handler: func(path string, query url.Values, out any) error {
			if query.Get("page") != "1" {
				listingPage()(out)
				return nil
			}
			listingPage(rawActivity(1, "Ride", 5000, "poly"))(out)
			return nil
		},
	}
	diskCache := newTestDiskCache(t)
	repo := NewRepository(repoConfig(), client, diskCache, &testutil.MockLogger{}, &testutil.MockMetrics{})

	first, err := repo.ListCyclingActivities(context.Background(), 365)
	require.NoError(t, err)
	callsAfterFirst := len(client.Calls)

	second, err := repo.ListCyclingActivities(context.Background(), 365)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, client.Calls, callsAfterFirst, "second listing served from disk")
}

func TestRepository_FirstPageFailureIsFatal(t *testing.T) {
	wantErr := errors.New("boom")
	client := &testutil.MockClient{
		Handler: func(path string, query url.Values, out any) error {
			return wantErr
		},
	}
	repo := newTestRepository(t, client)

	_, err := repo.ListCyclingActivities(context.Background(), 365)
	assert.ErrorIs(t, err, wantErr)
}

func TestRepository_LaterPageFailureReturnsPartialTable(t *testing.T) {
	conf := repoConfig()
	conf.Strava.PerPage = 1

	client := &testutil.MockClient{
		Handler: func(path string, query url.Values, out any) error {
			if query.Get("page") == "1" {
				listingPage(rawActivity(1, "Ride", 5000, "poly"))(out)
				return nil
			}
			return errors.New("page 2 exploded")
		},
	}
	repo := NewRepository(conf, client, newTestDiskCache(t), &testutil.MockLogger{}, &testutil.MockMetrics{})

	summaries, err := repo.ListCyclingActivities(context.Background(), 365)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].ID)
}

func TestRepository_EmptyListingIsValid(t *testing.T) {
	client := &testutil.MockClient{
		Handler: func(path string, query url.Values, out any) error {
			listingPage()(out)
			return nil
		},
	}
	repo := newTestRepository(t, client)

	summaries, err := repo.ListCyclingActivities(context.Background(), 365)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestRepository_AthleteCachedAfterFirstFetch(t *testing.T) {
	client := &testutil.MockClient{
		Handler: func(path string, query url.Values, out any) error {
			require.Equal(t, "/athlete", path)
			*(out.(*models.Athlete)) = models.Athlete{ID: 9, Username: "rider"}
			return nil
		},
	}
	diskCache := newTestDiskCache(t)
	repo := NewRepository(repoConfig(), client, diskCache, &testutil.MockLogger{}, &testutil.MockMetrics{})

	first, err := repo.Athlete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), first.ID)

	second, err := repo.Athlete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, client.Calls, 1)
}
