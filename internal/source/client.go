// Package source provides the HTTP client for the upstream content
// index. It satisfies the pipeline's Source interface and throttles
// outbound calls with a token-bucket limiter so feed runs stay inside
// the upstream rate budget.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
	"github.com/jonesrussell/north-cloud/curator/internal/logger"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 10 // requests per second
	defaultBurst     = 20

	recentPath = "/xrpc/app.feed.getRecent"
	threadPath = "/xrpc/app.feed.getThread"
)

// ErrNotFound indicates the upstream index has no record for the URI.
var ErrNotFound = errors.New("post not found")

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is the sustained request rate per second; Burst is the
	// bucket size. Zero values take the defaults.
	RateLimit float64
	Burst     int
}

// Client talks to the content index over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewClient creates a content index client.
func NewClient(cfg Config, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
		logger:  log,
	}
}

// recentResponse is the JSON shape of GET app.feed.getRecent.
type recentResponse struct {
	Posts []domain.Post `json:"posts"`
}

// FetchRecent returns one page of recent posts, newest first.
func (c *Client) FetchRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}

	var resp recentResponse
	if err := c.get(ctx, recentPath, params, &resp); err != nil {
		return nil, fmt.Errorf("fetch recent: %w", err)
	}

	c.logger.Debug("fetched recent posts",
		logger.Int("requested", limit),
		logger.Int("returned", len(resp.Posts)))

	return resp.Posts, nil
}

// FetchThread resolves the thread context around one post URI.
func (c *Client) FetchThread(ctx context.Context, uri string, depth int) (*domain.Thread, error) {
	params := url.Values{
		"uri":   {uri},
		"depth": {strconv.Itoa(depth)},
	}

	var thread domain.Thread
	if err := c.get(ctx, threadPath, params, &thread); err != nil {
		return nil, fmt.Errorf("fetch thread %s: %w", uri, err)
	}
	return &thread, nil
}

// Health probes the upstream index and returns the measured latency.
func (c *Client) Health(ctx context.Context) (time.Duration, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	latency := time.Since(start)
	if err != nil {
		return latency, fmt.Errorf("source unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return latency, fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}
	return latency, nil
}

// get performs one throttled GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, respPtr any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("source returned %d", resp.StatusCode)
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(respPtr); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}
