package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quake-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
	"github.com/couchcryptid/quake-map-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Reverse geocoding for features without a place (GEOCODING_ENABLED).
	var geocoder domain.Geocoder
	if cfg.GeocodingEnabled {
		client := mapbox.NewClient(cfg.TileAccessToken, cfg.GeocodingTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.GeocodingCacheSize, metrics)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.GeocodingCacheSize, "timeout", cfg.GeocodingTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	markers := store.New(cfg.FeedURL)
	loaders := []pipeline.BatchLoader{markers}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, metrics, logger)
		loaders = append(loaders, writer)
		logger.Info("kafka marker publishing enabled", "topic", cfg.KafkaTopic)
	}

	feed := usgs.NewClient(cfg.FeedURL, cfg.FeedTimeout, metrics, logger)
	transformer := pipeline.NewTransformer(geocoder, logger)
	p := pipeline.New(feed, transformer, loaders, cfg.PopupLocation, logger, metrics)

	page := httpadapter.DefaultPageConfig(mapbox.NewTileLayer(cfg.TileStyle, cfg.TileAccessToken, cfg.TileMaxZoom))
	srv := httpadapter.NewServer(cfg.HTTPAddr, markers, markers, page, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the feed once. A failure leaves the map empty and /readyz failing.
	logger.Info("loading earthquake feed", "url", feed.URL(), "preset", cfg.FeedPreset)
	go func() {
		if _, err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
