package strava

import (
	"context"
	"fmt"
	"net/url"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"heatmapd/internal/cache"
	"heatmapd/internal/models"
	"heatmapd/internal/providers"
	"heatmapd/internal/structures"
)

const streamKeys = "latlng,altitude,velocity_smooth,distance,time"

// StreamResult carries the validated streams in input order plus the
// identifiers that failed fetch or validation. Callers may inspect Failed
// for diagnostics; a non-empty Streams is the primary success condition.
type StreamResult struct {
	Streams []models.ActivityStream
	Failed  []int64
}

type PipelineInterface interface {
	FetchDetailedStreams(ctx context.Context, ids []int64) (*StreamResult, error)
}

// StreamPipeline fetches and validates per-activity telemetry streams.
// Items are independent, so fetches run on a bounded worker pool; the
// client's shared limiter keeps the global request interval intact.
type StreamPipeline struct {
	client      ClientInterface
	cache       *cache.DiskCache
	token       string
	concurrency int
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
}

func NewStreamPipeline(conf *structures.Config, client ClientInterface, diskCache *cache.DiskCache, logger providers.Logger, metrics providers.MetricsProviderInterface) PipelineInterface {
	return &StreamPipeline{
		client:      client,
		cache:       diskCache,
		token:       conf.Strava.AccessToken,
		concurrency: conf.Fetch.Concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// FetchDetailedStreams resolves each activity independently: one bad
// activity lands in Failed and never aborts the batch. Cancellation stops
// new fetches; the returned result still carries everything that finished
// before the cut, alongside the cancellation error.
func (p *StreamPipeline) FetchDetailedStreams(ctx context.Context, ids []int64) (*StreamResult, error) {
	streams := make([]*models.ActivityStream, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			stream, err := p.fetchOne(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Errorf(providers.TypeApp, "Activity %d stream failed: %s", id, err)
				p.metrics.IncStreamsFailed()
				return nil
			}
			streams[i] = stream
			return nil
		})
	}

	waitErr := g.Wait()

	result := &StreamResult{}
	for i, stream := range streams {
		if stream == nil {
			result.Failed = append(result.Failed, ids[i])
			continue
		}
		result.Streams = append(result.Streams, *stream)
	}

	p.logger.Infof(providers.TypeApp, "Stream fetch finished: %d ok, %d failed", len(result.Streams), len(result.Failed))
	return result, waitErr
}

// errTooFewCoordinates marks streams below the aggregation floor.
var errTooFewCoordinates = fmt.Errorf("fewer than %d valid coordinates", models.MinStreamCoordinates)

func (p *StreamPipeline) fetchOne(ctx context.Context, id int64) (*models.ActivityStream, error) {
	bundle, err := p.fetchBundle(ctx, id)
	if err != nil {
		return nil, err
	}

	stream, ok := bundle.Validate(id)
	if !ok {
		return nil, errTooFewCoordinates
	}
	return &stream, nil
}

func (p *StreamPipeline) fetchBundle(ctx context.Context, id int64) (*models.StreamBundle, error) {
	key := cache.StreamsKey(id, p.token)
	if data, ok := p.cache.Get(key); ok {
		var bundle models.StreamBundle
		if err := json.Unmarshal(data, &bundle); err == nil {
			p.metrics.IncCacheHits("disk")
			return &bundle, nil
		}
		p.logger.Warnf(providers.TypeApp, "Discarding undecodable stream cache record for activity %d", id)
	}
	p.metrics.IncCacheMisses("disk")

	query := url.Values{
		"keys":        {streamKeys},
		"key_by_type": {"true"},
	}

	var bundle models.StreamBundle
	if err := p.client.Get(ctx, fmt.Sprintf("/activities/%d/streams", id), query, &bundle); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(&bundle); err == nil {
		if err := p.cache.Set(key, data); err != nil {
			p.logger.Warnf(providers.TypeApp, "Failed to cache streams for activity %d: %s", id, err)
		}
	}
	return &bundle, nil
}
