package usgs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `{
  "type": "FeatureCollection",
  "metadata": {"generated": 1700000100000, "title": "USGS All Earthquakes, Past Week", "count": 2},
  "features": [
    {
      "type": "Feature",
      "id": "ak023e1",
      "properties": {"mag": 1.6, "place": "42 km W of Cantwell, Alaska", "time": 1700000000000},
      "geometry": {"type": "Point", "coordinates": [-149.71, 63.39, 91.2]}
    },
    {
      "type": "Feature",
      "id": "us7000l1",
      "properties": {"mag": 5.3, "place": "South Sandwich Islands region", "time": 1699990000000},
      "geometry": {"type": "Point", "coordinates": [-26.1, -58.2, 35]}
    }
  ]
}`

func testClient(url string, timeout time.Duration) *Client {
	return NewClient(url, timeout, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.Header.Get("Accept"), "application/geo+json")
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	fc, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, "ak023e1", fc.Features[0].ID)
	assert.Equal(t, orb.Point{-149.71, 63.39}, fc.Features[0].Geometry)
	assert.Equal(t, 5.3, fc.Features[1].Properties["mag"])
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.FeedFetches.WithLabelValues("success")))
	assert.Equal(t, srv.URL, c.URL())
}

func TestClient_Fetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Fetch(context.Background())
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, srv.URL, fetchErr.URL)
	assert.Contains(t, err.Error(), "maintenance")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.FeedFetches.WithLabelValues("error")))
}

func TestClient_Fetch_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not geojson</html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Fetch(context.Background())

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Contains(t, err.Error(), "decode feed")
}

func TestClient_Fetch_NotACollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[0,0]}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Fetch(context.Background())
	require.Error(t, err)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).Fetch(context.Background())

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(url, time.Second).Fetch(context.Background())

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
}
