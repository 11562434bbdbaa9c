package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// EarthquakeFeature is one event from the feed, validated and flattened.
type EarthquakeFeature struct {
	ID          string
	Magnitude   float64
	Place       string
	Time        int64     // epoch milliseconds
	Coordinates orb.Point // longitude, latitude
}

// Lon returns the feature's longitude.
func (f EarthquakeFeature) Lon() float64 { return f.Coordinates.Lon() }

// Lat returns the feature's latitude.
func (f EarthquakeFeature) Lat() float64 { return f.Coordinates.Lat() }

// ParseFeature converts a decoded GeoJSON feature into an EarthquakeFeature.
func ParseFeature(f *geojson.Feature) (EarthquakeFeature, error) {
	if f == nil {
		return EarthquakeFeature{}, &MalformedFeatureError{Field: "feature", Err: ErrNoGeometry}
	}
	id := featureID(f)

	point, ok := f.Geometry.(orb.Point)
	if !ok {
		return EarthquakeFeature{}, &MalformedFeatureError{FeatureID: id, Field: "geometry", Err: ErrNoGeometry}
	}

	mag, ok := numberProperty(f.Properties, "mag")
	if !ok || math.IsNaN(mag) {
		return EarthquakeFeature{}, &MalformedFeatureError{FeatureID: id, Field: "mag", Err: ErrMissingMagnitude}
	}

	ms, ok := numberProperty(f.Properties, "time")
	if !ok {
		return EarthquakeFeature{}, &MalformedFeatureError{FeatureID: id, Field: "time", Err: ErrMissingTime}
	}

	place, _ := f.Properties["place"].(string)

	return EarthquakeFeature{
		ID:          id,
		Magnitude:   mag,
		Place:       strings.TrimSpace(place),
		Time:        int64(ms),
		Coordinates: point,
	}, nil
}

func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// numberProperty returns a numeric property. JSON decoding yields float64 for
// all numbers, so other types (including null) are treated as absent.
func numberProperty(props geojson.Properties, key string) (float64, bool) {
	v, ok := props[key].(float64)
	return v, ok
}
