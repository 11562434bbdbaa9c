// Command quakedump fetches an earthquake feed once and writes the styled
// markers as a GeoJSON FeatureCollection, the same document the map page
// loads from /markers.geojson.
//
// Usage:
//
//	go run ./cmd/quakedump \
//	  -preset significant_month \
//	  -tz UTC \
//	  -out data/markers.geojson
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	httpadapter "github.com/couchcryptid/quake-map-service/internal/adapter/http"
	"github.com/couchcryptid/quake-map-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	preset := flag.String("preset", config.PresetAllWeek, "feed preset: all_week or significant_month")
	feedURL := flag.String("url", "", "feed URL (overrides -preset)")
	tz := flag.String("tz", "Local", "time zone for popup dates")
	timeout := flag.Duration("timeout", 10*time.Second, "feed request timeout")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	url := *feedURL
	if url == "" {
		var ok bool
		if url, ok = config.PresetURL(*preset); !ok {
			flag.Usage()
			return fmt.Errorf("unknown preset %q", *preset)
		}
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("load time zone: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := observability.NewMetricsForTesting()

	feed := usgs.NewClient(url, *timeout, metrics, logger)
	p := pipeline.New(feed, pipeline.NewTransformer(nil, logger), nil, loc, logger, metrics)

	logger.Info("fetching earthquake feed", "url", feed.URL())
	result, err := p.Run(context.Background())
	if err != nil {
		return err
	}

	if *out == "" {
		if err := writeMarkers(os.Stdout, result.Markers); err != nil {
			return err
		}
	} else if err := writeMarkersFile(*out, result.Markers); err != nil {
		return err
	}

	logger.Info("markers written", "markers", len(result.Markers), "skipped", result.Skipped)
	return nil
}

// writeMarkersFile writes markers to path. The file is closed before
// returning so a failed flush is reported.
func writeMarkersFile(path string, markers []domain.RenderableMarker) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeMarkers(f, markers); err != nil {
		f.Close() //nolint:errcheck // write error is returned
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func writeMarkers(w io.Writer, markers []domain.RenderableMarker) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(httpadapter.MarkerCollection(markers)); err != nil {
		return fmt.Errorf("write markers: %w", err)
	}
	return nil
}
