package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// QuakeTransformer implements Transformer using domain parsing with optional
// reverse geocoding of missing places.
type QuakeTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a QuakeTransformer. Pass a nil geocoder to disable
// place enrichment.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger) *QuakeTransformer {
	return &QuakeTransformer{
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *QuakeTransformer) Transform(ctx context.Context, raw *geojson.Feature) (domain.EarthquakeFeature, error) {
	f, err := domain.ParseFeature(raw)
	if err != nil {
		return domain.EarthquakeFeature{}, err
	}
	return domain.EnrichPlace(ctx, f, t.geocoder, t.logger), nil
}
