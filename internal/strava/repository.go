package strava

import (
	"context"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"heatmapd/internal/cache"
	"heatmapd/internal/models"
	"heatmapd/internal/providers"
	"heatmapd/internal/structures"
)

type RepositoryInterface interface {
	Athlete(ctx context.Context) (*models.Athlete, error)
	ListCyclingActivities(ctx context.Context, daysBack int) ([]models.ActivitySummary, error)
}

// Repository lists and normalizes activity summaries. Network goes through
// the rate-limited client; every request shape is shielded by the disk
// cache so repeated dashboard loads cost zero API quota.
type Repository struct {
	client  ClientInterface
	cache   *cache.DiskCache
	token   string
	perPage int
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewRepository(conf *structures.Config, client ClientInterface, diskCache *cache.DiskCache, logger providers.Logger, metrics providers.MetricsProviderInterface) RepositoryInterface {
	return &Repository{
		client:  client,
		cache:   diskCache,
		token:   conf.Strava.AccessToken,
		perPage: conf.Strava.PerPage,
		logger:  logger,
		metrics: metrics,
	}
}

func (r *Repository) Athlete(ctx context.Context) (*models.Athlete, error) {
	key := cache.AthleteKey(r.token)
	if data, ok := r.cache.Get(key); ok {
		var athlete models.Athlete
		if err := json.Unmarshal(data, &athlete); err == nil {
			r.metrics.IncCacheHits("disk")
			return &athlete, nil
		}
		r.logger.Warnf(providers.TypeApp, "Discarding undecodable athlete cache record")
	}
	r.metrics.IncCacheMisses("disk")

	var athlete models.Athlete
	if err := r.client.Get(ctx, "/athlete", nil, &athlete); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(&athlete); err == nil {
		if err := r.cache.Set(key, data); err != nil {
			r.logger.Warnf(providers.TypeApp, "Failed to cache athlete profile: %s", err)
		}
	}
	return &athlete, nil
}

// ListCyclingActivities returns the normalized summary table for the last
// daysBack days. Pages through the listing endpoint until a short or empty
// page; entries failing the cycling filter are discarded silently. An empty
// table is a valid outcome, not an error.
func (r *Repository) ListCyclingActivities(ctx context.Context, daysBack int) ([]models.ActivitySummary, error) {
	key := cache.ActivitiesKey(daysBack, r.token)
	if data, ok := r.cache.Get(key); ok {
		var cached []models.ActivitySummary
		if err := json.Unmarshal(data, &cached); err == nil {
			r.metrics.IncCacheHits("disk")
			return cached, nil
		}
		r.logger.Warnf(providers.TypeApp, "Discarding undecodable activities cache record")
	}
	r.metrics.IncCacheMisses("disk")

	after := time.Now().AddDate(0, 0, -daysBack).Unix()
	summaries := make([]models.ActivitySummary, 0)

	for page := 1; ; page++ {
		query := url.Values{
			"per_page": {strconv.Itoa(r.perPage)},
			"page":     {strconv.Itoa(page)},
			"after":    {strconv.FormatInt(after, 10)},
		}

		var raw []models.RawActivity
		if err := r.client.Get(ctx, "/athlete/activities", query, &raw); err != nil {
			if page == 1 {
				return nil, err
			}
			// Partial table beats total failure: keep what earlier pages
			// already produced.
			r.logger.Errorf(providers.TypeApp, "Activity listing aborted at page %d: %s", page, err)
			break
		}

		if len(raw) == 0 {
			break
		}

		for i := range raw {
			if raw[i].Keep() {
				summaries = append(summaries, raw[i].Summary())
			}
		}

		if len(raw) < r.perPage {
			break
		}
	}

	r.logger.Infof(providers.TypeApp, "Fetched %d cycling activities (%d days back)", len(summaries), daysBack)
	r.metrics.SetActivitiesFetched(len(summaries))

	if len(summaries) > 0 {
		if data, err := json.Marshal(summaries); err == nil {
			if err := r.cache.Set(key, data); err != nil {
				r.logger.Warnf(providers.TypeApp, "Failed to cache activity listing: %s", err)
			}
		}
	}

	return summaries, nil
}
