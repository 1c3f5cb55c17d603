package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"heatmapd/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(layer string)
	IncCacheMisses(layer string)
	IncUpstreamRequests(endpoint string)
	IncUpstreamRetries()
	ObserveRateLimitWait(duration time.Duration)
	SetActivitiesFetched(count int)
	IncStreamsFailed()
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamRetries  prometheus.Counter
	rateLimitWait    prometheus.Histogram
	activitiesTotal  prometheus.Gauge
	streamsFailed    prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(layer string) {
	m.cacheHits.WithLabelValues(layer).Inc()
}

func (m *MetricsProvider) IncCacheMisses(layer string) {
	m.cacheMisses.WithLabelValues(layer).Inc()
}

func (m *MetricsProvider) IncUpstreamRequests(endpoint string) {
	m.upstreamRequests.WithLabelValues(endpoint).Inc()
}

func (m *MetricsProvider) IncUpstreamRetries() {
	m.upstreamRetries.Inc()
}

func (m *MetricsProvider) ObserveRateLimitWait(duration time.Duration) {
	m.rateLimitWait.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetActivitiesFetched(count int) {
	m.activitiesTotal.Set(float64(count))
}

func (m *MetricsProvider) IncStreamsFailed() {
	m.streamsFailed.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "heatmapd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "heatmapd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "heatmapd_cache_hits_total",
			Help: "Total number of cache hits by layer",
		}, []string{"layer"}),

		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "heatmapd_cache_misses_total",
			Help: "Total number of cache misses by layer",
		}, []string{"layer"}),

		upstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "heatmapd_upstream_requests_total",
			Help: "Total number of requests issued to the Strava API",
		}, []string{"endpoint"}),

		upstreamRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heatmapd_upstream_retries_total",
			Help: "Total number of retried Strava API requests",
		}),

		rateLimitWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "heatmapd_rate_limit_wait_seconds",
			Help:    "Time spent waiting on the request interval gate",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 60, 300, 900},
		}),

		activitiesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "heatmapd_activities_fetched",
			Help: "Number of activities in the last fetched summary table",
		}),

		streamsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heatmapd_streams_failed_total",
			Help: "Total number of activities rejected by the stream pipeline",
		}),
	}

	return m
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)              {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits(_ string)                         {}
func (n *noopMetrics) IncCacheMisses(_ string)                       {}
func (n *noopMetrics) IncUpstreamRequests(_ string)                  {}
func (n *noopMetrics) IncUpstreamRetries()                           {}
func (n *noopMetrics) ObserveRateLimitWait(_ time.Duration)          {}
func (n *noopMetrics) SetActivitiesFetched(_ int)                    {}
func (n *noopMetrics) IncStreamsFailed()                             {}
