package testutil

import (
	"context"
	"net/url"
	"sync"
	"time"

	"heatmapd/internal/models"
	"heatmapd/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were recorded at the given level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu               sync.Mutex
	Requests         int
	CacheHits        int
	CacheMisses      int
	UpstreamRequests int
	UpstreamRetries  int
	StreamsFailed    int
	Activities       int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) IncUpstreamRequests(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpstreamRequests++
}
func (m *MockMetrics) IncUpstreamRetries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpstreamRetries++
}
func (m *MockMetrics) ObserveRateLimitWait(_ time.Duration) {}
func (m *MockMetrics) SetActivitiesFetched(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Activities = count
}
func (m *MockMetrics) IncStreamsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamsFailed++
}

// MockCacheProvider is an in-memory providers.CacheProviderInterface.
type MockCacheProvider struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{data: make(map[string][]byte)}
}

func (m *MockCacheProvider) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *MockCacheProvider) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *MockCacheProvider) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// MockClient implements strava.ClientInterface via a caller-supplied handler.
type MockClient struct {
	Handler func(path string, query url.Values, out any) error
	mu      sync.Mutex
	Calls   []string
}

func (m *MockClient) Get(_ context.Context, path string, query url.Values, out any) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, path)
	m.mu.Unlock()
	return m.Handler(path, query, out)
}

func (m *MockClient) Requests() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.Calls))
}

// MockHeatmapService implements services.HeatmapServiceInterface with
// canned data.
type MockHeatmapService struct {
	AthleteData    *models.Athlete
	ActivitiesData []models.ActivitySummary
	Bundle         *models.HeatmapBundle
	InsightsData   *models.Insights
	Err            error
	ClearCalls     int
}

func (m *MockHeatmapService) Athlete(_ context.Context) (*models.Athlete, error) {
	return m.AthleteData, m.Err
}

func (m *MockHeatmapService) Activities(_ context.Context, _ int) ([]models.ActivitySummary, error) {
	return m.ActivitiesData, m.Err
}

func (m *MockHeatmapService) Heatmaps(_ context.Context, _, _ int, _ []string) (*models.HeatmapBundle, error) {
	return m.Bundle, m.Err
}

func (m *MockHeatmapService) Insights(_ context.Context, _ int) (*models.Insights, error) {
	return m.InsightsData, m.Err
}

func (m *MockHeatmapService) ClearCache() error {
	m.ClearCalls++
	return m.Err
}
