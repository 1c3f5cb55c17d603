package strava

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatmapd/internal/structures"
	"heatmapd/internal/testutil"
)

func pipelineConfig() *structures.Config {
	return &structures.Config{
		Strava: structures.StravaConfig{AccessToken: "test-token"},
		Fetch:  structures.FetchConfig{Concurrency: 4},
	}
}

func newTestPipeline(t *testing.T, client ClientInterface) PipelineInterface {
	t.Helper()
	return NewStreamPipeline(pipelineConfig(), client, newTestDiskCache(t), &testutil.MockLogger{}, &testutil.MockMetrics{})
}

func streamBundleJSON(coordCount int) []byte {
	bundle := map[string]any{
		"latlng": map[string]any{"data": coordPairs(coordCount)},
	}
	data, _ := json.Marshal(bundle)
	return data
}

func coordPairs(n int) [][]float64 {
	pairs := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, []float64{40.0 + float64(i)*0.001, -74.0})
	}
	return pairs
}

func bundleHandler(perID map[int64][]byte) func(path string, query url.Values, out any) error {
	return func(path string, query url.Values, out any) error {
		var id int64
		if _, err := fmt.Sscanf(path, "/activities/%d/streams", &id); err != nil {
			return fmt.Errorf("unexpected path %q", path)
		}
		data, ok := perID[id]
		if !ok {
			return errors.New("no canned bundle")
		}
		return json.Unmarshal(data, out)
	}
}

func TestStreamPipeline_ValidStreamsInInputOrder(t *testing.T) {
	client := &testutil.MockClient{Handler: bundleHandler(map[int64][]byte{
		1: streamBundleJSON(12),
		2: streamBundleJSON(15),
		3: streamBundleJSON(20),
	})}
	pipeline := newTestPipeline(t, client)

	result, err := pipeline.FetchDetailedStreams(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, result.Streams, 3)
	assert.Empty(t, result.Failed)

	assert.Equal(t, int64(1), result.Streams[0].ID)
	assert.Equal(t, int64(2), result.Streams[1].ID)
	assert.Equal(t, int64(3), result.Streams[2].ID)
}

func TestStreamPipeline_TooFewCoordinatesLandsInFailed(t *testing.T) {
	client := &testutil.MockClient{Handler: bundleHandler(map[int64][]byte{
		1: streamBundleJSON(8),
		2: streamBundleJSON(12),
	})}
	pipeline := newTestPipeline(t, client)

	result, err := pipeline.FetchDetailedStreams(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	require.Len(t, result.Streams, 1)
	assert.Equal(t, int64(2), result.Streams[0].ID)
	assert.Equal(t, []int64{1}, result.Failed)
}

func TestStreamPipeline_InvalidPairsDroppedValidRetained(t *testing.T) {
	pairs := coordPairs(12)
	pairs = append(pairs, []float64{91.0, 0}, []float64{0, 181.0}, []float64{40.0})
	bundle := map[string]any{"latlng": map[string]any{"data": pairs}}
	data, _ := json.Marshal(bundle)

	client := &testutil.MockClient{Handler: bundleHandler(map[int64][]byte{1: data})}
	pipeline := newTestPipeline(t, client)

	result, err := pipeline.FetchDetailedStreams(context.Background(), []int64{1})
	require.NoError(t, err)
	require.Len(t, result.Streams, 1)
	assert.Len(t, result.Streams[0].Coordinates, 12)
}

func TestStreamPipeline_OneFailureNeverAbortsBatch(t *testing.T) {
	client := &testutil.MockClient{Handler: bundleHandler(map[int64][]byte{
		1: streamBundleJSON(12),
		// 2 has no canned bundle: fetch error
		3: streamBundleJSON(12),
	})}
	metrics := &testutil.MockMetrics{}
	pipeline := NewStreamPipeline(pipelineConfig(), client, newTestDiskCache(t), &testutil.MockLogger{}, metrics)

	result, err := pipeline.FetchDetailedStreams(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)

	require.Len(t, result.Streams, 2)
	assert.Equal(t, []int64{2}, result.Failed)
	assert.Equal(t, 1, metrics.StreamsFailed)
}

func TestStreamPipeline_SecondFetchServedFromDisk(t *testing.T) {
	client := &testutil.MockClient{Handler: bundleHandler(map[int64][]byte{
		1: streamBundleJSON(12),
	})}
	pipeline := newTestPipeline(t, client)

	_, err := pipeline.FetchDetailedStreams(context.Background(), []int64{1})
	require.NoError(t, err)
	callsAfterFirst := len(client.Calls)

	result, err := pipeline.FetchDetailedStreams(context.Background(), []int64{1})
	require.NoError(t, err)
	require.Len(t, result.Streams, 1)
	assert.Len(t, client.Calls, callsAfterFirst, "cached bundle avoids a second request")
}

func TestStreamPipeline_CancelledContextPropagates(t *testing.T) {
	client := &testutil.MockClient{Handler: bundleHandler(map[int64][]byte{
		1: streamBundleJSON(12),
	})}
	pipeline := newTestPipeline(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := pipeline.FetchDetailedStreams(ctx, []int64{1, 2, 3})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Streams)
}

func TestStreamPipeline_EmptyInput(t *testing.T) {
	client := &testutil.MockClient{Handler: bundleHandler(nil)}
	pipeline := newTestPipeline(t, client)

	result, err := pipeline.FetchDetailedStreams(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Streams)
	assert.Empty(t, result.Failed)
	assert.Empty(t, client.Calls)
}
