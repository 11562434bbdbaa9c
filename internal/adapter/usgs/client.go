package usgs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/paulmach/orb/geojson"
)

// maxFeedBytes bounds the response body. The all_month feed is ~10MB.
const maxFeedBytes = 64 << 20

// Client fetches a USGS GeoJSON summary feed.
// It implements pipeline.FeedExtractor.
type Client struct {
	feedURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client for a single feed URL.
func NewClient(feedURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// URL returns the feed this client reads.
func (c *Client) URL() string { return c.feedURL }

// Fetch issues one GET for the feed and decodes the FeatureCollection.
// Every failure is returned as a *domain.FetchError; there is no retry.
func (c *Client) Fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	start := time.Now()
	fc, err := c.fetch(ctx)
	c.metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FeedFetches.WithLabelValues("error").Inc()
		return nil, err
	}

	c.metrics.FeedFetches.WithLabelValues("success").Inc()
	c.logger.Info("feed fetched", "url", c.feedURL, "features", len(fc.Features), "duration", time.Since(start))
	return fc, nil
}

func (c *Client) fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: c.feedURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: c.feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.FetchError{
			URL:        c.feedURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", body),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, &domain.FetchError{URL: c.feedURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &domain.FetchError{URL: c.feedURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode feed: %w", err)}
	}
	if fc.Type != "FeatureCollection" {
		return nil, &domain.FetchError{URL: c.feedURL, StatusCode: resp.StatusCode, Err: errors.New("decode feed: not a FeatureCollection")}
	}
	return fc, nil
}
