package strava

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"heatmapd/internal/providers"
	"heatmapd/internal/structures"
)

type ClientInterface interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Requests() int64
}

// Client is the only component that talks to the network. A shared rate
// limiter enforces the minimum inter-request interval across all callers,
// so concurrent stream workers still honor the global gate.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	backoffBase time.Duration
	cooldown    time.Duration
	requests    atomic.Int64
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (ClientInterface, error) {
	if strings.TrimSpace(conf.Strava.AccessToken) == "" {
		return nil, ErrMissingCredentials
	}

	return &Client{
		baseURL:     strings.TrimSuffix(conf.Strava.BaseURL, "/"),
		token:       conf.Strava.AccessToken,
		httpClient:  &http.Client{Timeout: conf.Fetch.RequestTimeout},
		limiter:     rate.NewLimiter(rate.Every(conf.Fetch.MinRequestInterval), 1),
		maxAttempts: conf.Fetch.MaxAttempts,
		backoffBase: conf.Fetch.BackoffBase,
		cooldown:    conf.Fetch.RateLimitCooldown,
		logger:      logger,
		metrics:     metrics,
	}, nil
}

// Requests reports how many requests have been issued since startup.
// Diagnostic only; never used for control flow.
func (c *Client) Requests() int64 {
	return c.requests.Load()
}

// Get issues a GET against the API and decodes the JSON response into out.
// 429 responses trigger a Retry-After cooldown and do not consume the
// attempt budget; other failures retry with exponential backoff. All waits
// abort on ctx cancellation.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	attempts := 0

	for {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		c.metrics.ObserveRateLimitWait(time.Since(waitStart))

		c.requests.Inc()
		c.metrics.IncUpstreamRequests(path)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if query != nil {
			req.URL.RawQuery = query.Encode()
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			attempts++
			if attempts >= c.maxAttempts {
				return &TransportError{Endpoint: path, Err: err}
			}
			c.logger.Warnf(providers.TypeApp, "Transport error on %s (attempt %d/%d): %s", path, attempts, c.maxAttempts, err)
			c.metrics.IncUpstreamRetries()
			if err := sleepContext(ctx, c.backoff(attempts)); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			delay := retryAfter(resp.Header, c.cooldown)
			drain(resp)
			c.logger.Warnf(providers.TypeApp, "Rate limited on %s, cooling down for %s", path, delay)
			if err := sleepContext(ctx, delay); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode >= http.StatusBadRequest {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			attempts++
			if attempts >= c.maxAttempts {
				return &RequestFailedError{Endpoint: path, Status: resp.StatusCode, Body: string(body)}
			}
			c.logger.Warnf(providers.TypeApp, "Request %s returned %d (attempt %d/%d)", path, resp.StatusCode, attempts, c.maxAttempts)
			c.metrics.IncUpstreamRetries()
			if err := sleepContext(ctx, c.backoff(attempts)); err != nil {
				return err
			}
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		return err
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	return c.backoffBase << attempt
}

// retryAfter reads the Retry-After header in seconds, falling back to the
// configured cooldown when absent or unparsable.
func retryAfter(h http.Header, fallback time.Duration) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

// sleepContext is a cancellable sleep so backoff and cooldown waits do not
// pin a batch that the caller already gave up on.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
