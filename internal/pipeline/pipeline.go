package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/paulmach/orb/geojson"
)

// FeedExtractor fetches the feed's FeatureCollection.
type FeedExtractor interface {
	Fetch(ctx context.Context) (*geojson.FeatureCollection, error)
}

// Transformer converts a raw feed feature into a validated earthquake feature.
type Transformer interface {
	Transform(ctx context.Context, raw *geojson.Feature) (domain.EarthquakeFeature, error)
}

// BatchLoader receives the full marker set.
type BatchLoader interface {
	LoadBatch(ctx context.Context, markers []domain.RenderableMarker) error
}

// Result summarizes one pipeline run.
type Result struct {
	Received int
	Skipped  int
	Markers  []domain.RenderableMarker
}

// Pipeline runs the fetch-transform-load sequence once.
type Pipeline struct {
	extractor   FeedExtractor
	transformer Transformer
	loaders     []BatchLoader
	location    *time.Location
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline. Popup times are rendered in loc.
func New(e FeedExtractor, t Transformer, loaders []BatchLoader, loc *time.Location, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		location:    loc,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run fetches the feed once, builds markers, and hands them to every loader.
// A fetch failure is returned as-is and nothing is loaded; there is no retry.
// Loader failures are joined so one failing sink does not hide the others.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.logger.Info("pipeline started", "loaders", len(p.loaders))

	fc, err := p.extractor.Fetch(ctx)
	if err != nil {
		p.logger.Error("feed fetch failed", "error", err)
		return Result{}, err
	}

	features := p.transformAll(ctx, fc.Features)
	markers := domain.Transform(features, p.location)
	for _, m := range markers {
		p.metrics.MarkersRendered.WithLabelValues(m.Style.Color).Inc()
	}

	result := Result{
		Received: len(fc.Features),
		Skipped:  len(fc.Features) - len(features),
		Markers:  markers,
	}

	var errs []error
	loaded := 0
	for _, l := range p.loaders {
		if err := l.LoadBatch(ctx, markers); err != nil {
			p.logger.Error("load markers failed", "error", err, "markers", len(markers))
			errs = append(errs, err)
			continue
		}
		loaded++
	}
	if loaded > 0 {
		p.metrics.SnapshotLoaded.Set(1)
	}

	p.logger.Info("pipeline finished",
		"received", result.Received,
		"skipped", result.Skipped,
		"markers", len(markers),
	)
	return result, errors.Join(errs...)
}

// transformAll validates each feature, skipping malformed ones. Output keeps feed order.
func (p *Pipeline) transformAll(ctx context.Context, raws []*geojson.Feature) []domain.EarthquakeFeature {
	p.metrics.FeaturesReceived.Add(float64(len(raws)))

	features := make([]domain.EarthquakeFeature, 0, len(raws))
	for i, raw := range raws {
		f, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping feature", "error", err, "feed_index", i)
			p.metrics.FeaturesSkipped.Inc()
			continue
		}
		features = append(features, f)
	}
	return features
}
