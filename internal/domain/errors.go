package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGeometry marks a feature without a Point geometry.
	ErrNoGeometry = errors.New("feature has no point geometry")
	// ErrMissingMagnitude marks a feature whose magnitude is absent or not a number.
	ErrMissingMagnitude = errors.New("feature has no numeric magnitude")
	// ErrMissingTime marks a feature without an origin time.
	ErrMissingTime = errors.New("feature has no origin time")
)

// FetchError reports a failed feed request. StatusCode is zero when the
// request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MalformedFeatureError reports a feed feature that cannot become a marker.
type MalformedFeatureError struct {
	FeatureID string
	Field     string
	Err       error
}

func (e *MalformedFeatureError) Error() string {
	return fmt.Sprintf("malformed feature %q: %s: %v", e.FeatureID, e.Field, e.Err)
}

func (e *MalformedFeatureError) Unwrap() error { return e.Err }
