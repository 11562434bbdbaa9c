// Package domain models USGS earthquake features and their map markers.
//
// # Data Source
//
// Features come from the USGS real-time GeoJSON summary feeds at
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/geojson.php. Each feed is
// a FeatureCollection of Point features. The fields used here are:
//
//	properties.mag    magnitude (number, may be null for unreviewed events)
//	properties.place  human-readable location, e.g. "10km N of Example"
//	properties.time   origin time in milliseconds since the Unix epoch
//	geometry          Point [longitude, latitude, depth]
//
// # Visual Encoding
//
// Magnitude drives both marker color and marker size:
//
//	Color: six half-open bins with boundaries 1, 2, 3, 4, 5. A boundary
//	value belongs to the upper bin, so 2.0 is in [2,3).
//
//	  <1 #68FF33 | <2 #CEFF33 | <3 #FFF633 | <4 #FFBB33 | <5 #FF8633 | ≥5 #FF4933
//
//	Radius: magnitude × 10000 map units (meters for Leaflet circles). No
//	clamping is applied; non-positive magnitudes produce degenerate circles.
//
// # Malformed Features
//
// [ParseFeature] rejects features that cannot be placed or styled (missing
// point geometry, missing or non-numeric magnitude, missing time) with a
// [MalformedFeatureError]. A missing place is tolerated: it can be filled by
// reverse geocoding, and otherwise renders as "Unknown location".
package domain
