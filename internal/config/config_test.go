package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, PresetAllWeek, cfg.FeedPreset)
	assert.Equal(t, "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson", cfg.FeedURL)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, testMapboxToken, cfg.TileAccessToken)
	assert.Equal(t, "mapbox/light-v11", cfg.TileStyle)
	assert.Equal(t, 12, cfg.TileMaxZoom)
	assert.Equal(t, time.Local, cfg.PopupLocation)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.GeocodingEnabled)
	assert.Equal(t, 5*time.Second, cfg.GeocodingTimeout)
	assert.Equal(t, 1000, cfg.GeocodingCacheSize)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "earthquake-markers", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("FEED_PRESET", PresetSignificantMonth)
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("TILE_STYLE", "mapbox/dark-v11")
	t.Setenv("TILE_MAX_ZOOM", "8")
	t.Setenv("POPUP_TIMEZONE", "UTC")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("GEOCODING_ENABLED", "true")
	t.Setenv("GEOCODING_TIMEOUT", "2s")
	t.Setenv("GEOCODING_CACHE_SIZE", "50")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "quakes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/significant_month.geojson", cfg.FeedURL)
	assert.Equal(t, 3*time.Second, cfg.FeedTimeout)
	assert.Equal(t, "mapbox/dark-v11", cfg.TileStyle)
	assert.Equal(t, 8, cfg.TileMaxZoom)
	assert.Equal(t, time.UTC, cfg.PopupLocation)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.GeocodingEnabled)
	assert.Equal(t, 2*time.Second, cfg.GeocodingTimeout)
	assert.Equal(t, 50, cfg.GeocodingCacheSize)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "quakes", cfg.KafkaTopic)
}

func TestLoad_FeedURLOverridesPreset(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("FEED_PRESET", PresetSignificantMonth)
	t.Setenv("FEED_URL", "http://localhost:9999/feed.geojson")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/feed.geojson", cfg.FeedURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing token", map[string]string{"MAPBOX_TOKEN": ""}, "MAPBOX_TOKEN"},
		{"unknown preset", map[string]string{"FEED_PRESET": "all_year"}, "FEED_PRESET"},
		{"bad feed url", map[string]string{"FEED_URL": "not a url"}, "FEED_URL"},
		{"bad feed timeout", map[string]string{"FEED_TIMEOUT": "soon"}, "FEED_TIMEOUT"},
		{"negative feed timeout", map[string]string{"FEED_TIMEOUT": "-1s"}, "FEED_TIMEOUT"},
		{"bad shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"max zoom too large", map[string]string{"TILE_MAX_ZOOM": "30"}, "TILE_MAX_ZOOM"},
		{"max zoom not a number", map[string]string{"TILE_MAX_ZOOM": "x"}, "TILE_MAX_ZOOM"},
		{"bad timezone", map[string]string{"POPUP_TIMEZONE": "Mars/Olympus"}, "POPUP_TIMEZONE"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"zero cache size", map[string]string{"GEOCODING_CACHE_SIZE": "0"}, "GEOCODING_CACHE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAPBOX_TOKEN", testMapboxToken)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPresetURL(t *testing.T) {
	u, ok := PresetURL(PresetSignificantMonth)
	assert.True(t, ok)
	assert.Contains(t, u, "significant_month.geojson")

	_, ok = PresetURL("all_year")
	assert.False(t, ok)
}
