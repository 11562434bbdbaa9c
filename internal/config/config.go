package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
)

// USGS summary feeds selectable through FEED_PRESET.
const (
	PresetAllWeek          = "all_week"
	PresetSignificantMonth = "significant_month"
)

var feedPresets = map[string]string{
	PresetAllWeek:          "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson",
	PresetSignificantMonth: "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/significant_month.geojson",
}

// PresetURL returns the feed URL for a preset name.
func PresetURL(name string) (string, bool) {
	u, ok := feedPresets[name]
	return u, ok
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedPreset  string        `env:"FEED_PRESET" validate:"oneof=all_week significant_month"`
	FeedURL     string        `env:"FEED_URL" validate:"required,url"`
	FeedTimeout time.Duration `env:"FEED_TIMEOUT" validate:"gt=0"`

	// Tile layer settings for the map page.
	TileAccessToken string `env:"MAPBOX_TOKEN" validate:"required"`
	TileStyle       string `env:"TILE_STYLE" validate:"required"`
	TileMaxZoom     int    `env:"TILE_MAX_ZOOM" validate:"min=1,max=22"`

	PopupLocation *time.Location `env:"POPUP_TIMEZONE" validate:"required"`

	HTTPAddr        string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// Reverse geocoding fills in features that arrive without a place.
	GeocodingEnabled   bool          `env:"GEOCODING_ENABLED"`
	GeocodingTimeout   time.Duration `env:"GEOCODING_TIMEOUT" validate:"gt=0"`
	GeocodingCacheSize int           `env:"GEOCODING_CACHE_SIZE" validate:"gt=0"`

	KafkaEnabled bool     `env:"KAFKA_ENABLED"`
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" validate:"required_if=KafkaEnabled true"`
}

var validate = newValidator()

// newValidator reports field errors by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parseDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocodingTimeout, err := parseDuration("GEOCODING_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	maxZoom, err := parseInt("TILE_MAX_ZOOM", 12)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseInt("GEOCODING_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault("POPUP_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid POPUP_TIMEZONE: %w", err)
	}

	preset := sharedcfg.EnvOrDefault("FEED_PRESET", PresetAllWeek)

	cfg := &Config{
		FeedPreset:  preset,
		FeedURL:     sharedcfg.EnvOrDefault("FEED_URL", feedPresets[preset]),
		FeedTimeout: feedTimeout,

		TileAccessToken: os.Getenv("MAPBOX_TOKEN"),
		TileStyle:       sharedcfg.EnvOrDefault("TILE_STYLE", "mapbox/light-v11"),
		TileMaxZoom:     maxZoom,

		PopupLocation: loc,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GeocodingEnabled:   os.Getenv("GEOCODING_ENABLED") == "true",
		GeocodingTimeout:   geocodingTimeout,
		GeocodingCacheSize: cacheSize,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "earthquake-markers"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, describe(err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

// describe turns the first validation failure into an error naming the variable.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if fe.Tag() == "required" || fe.Tag() == "required_if" {
		return fmt.Errorf("%s is required", fe.Field())
	}
	return fmt.Errorf("invalid %s: %q fails %s", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag())
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
