package domain

import (
	"context"
	"log/slog"
)

// EnrichPlace fills in a missing place by reverse geocoding the feature's
// coordinates. Features that already have a place, a nil geocoder, and
// geocoding failures all leave the feature unchanged.
func EnrichPlace(ctx context.Context, f EarthquakeFeature, geocoder Geocoder, logger *slog.Logger) EarthquakeFeature {
	if geocoder == nil || f.Place != "" {
		return f
	}

	result, err := geocoder.ReverseGeocode(ctx, f.Lat(), f.Lon())
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"feature_id", f.ID,
			"lat", f.Lat(),
			"lon", f.Lon(),
			"error", err,
		)
		return f
	}

	switch {
	case result.FormattedAddress != "":
		f.Place = result.FormattedAddress
	case result.PlaceName != "":
		f.Place = result.PlaceName
	}
	return f
}
