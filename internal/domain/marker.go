package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// PopupTimeLayout renders origin times in the popup.
const PopupTimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// UnknownPlace is shown when a feature has no place and enrichment found none.
const UnknownPlace = "Unknown location"

// RenderableMarker is a styled point with its popup, ready for the map.
type RenderableMarker struct {
	SourceIndex int         `json:"sourceIndex"`
	FeatureID   string      `json:"id"`
	Point       orb.Point   `json:"point"`
	Magnitude   float64     `json:"mag"`
	Style       MarkerStyle `json:"style"`
	Place       string      `json:"place"`
	Date        string      `json:"date"`
	Popup       string      `json:"popup"`
}

// Transform builds one marker per feature, preserving input order.
// SourceIndex is the feature's position in features.
func Transform(features []EarthquakeFeature, loc *time.Location) []RenderableMarker {
	markers := make([]RenderableMarker, len(features))
	for i, f := range features {
		markers[i] = NewMarker(i, f, loc)
	}
	return markers
}

// NewMarker styles a single feature.
func NewMarker(index int, f EarthquakeFeature, loc *time.Location) RenderableMarker {
	place := f.Place
	if place == "" {
		place = UnknownPlace
	}
	date := FormatTime(f.Time, loc)
	return RenderableMarker{
		SourceIndex: index,
		FeatureID:   f.ID,
		Point:       f.Coordinates,
		Magnitude:   f.Magnitude,
		Style:       StyleFor(f.Magnitude),
		Place:       place,
		Date:        date,
		Popup:       popupText(place, date),
	}
}

// PopupText renders the place as a heading followed by the origin time.
// The place is kept verbatim, so the result is a layout template and not
// trusted HTML. Renderers build the popup from Place and Date as text.
func PopupText(place string, epochMillis int64, loc *time.Location) string {
	if place == "" {
		place = UnknownPlace
	}
	return popupText(place, FormatTime(epochMillis, loc))
}

func popupText(place, date string) string {
	return "<h3>" + place + "</h3><hr><p>" + date + "</p>"
}

// FormatTime renders epoch milliseconds as a calendar date in loc.
// A nil loc means the process local time zone.
func FormatTime(epochMillis int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(epochMillis).In(loc).Format(PopupTimeLayout)
}
