package domain

// Magnitude color bins, lowest first.
const (
	ColorMicro    = "#68FF33" // < 1
	ColorMinor    = "#CEFF33" // [1,2)
	ColorLight    = "#FFF633" // [2,3)
	ColorModerate = "#FFBB33" // [3,4)
	ColorStrong   = "#FF8633" // [4,5)
	ColorMajor    = "#FF4933" // >= 5
)

const (
	// RadiusScale converts magnitude to circle radius in meters.
	RadiusScale = 10000.0
	// FillOpacity is applied to every marker.
	FillOpacity = 0.75
)

// MarkerStyle is the visual encoding of one magnitude.
type MarkerStyle struct {
	Color       string  `json:"color"`
	Radius      float64 `json:"radius"`
	FillOpacity float64 `json:"fillOpacity"`
}

// Color maps a magnitude to its bin color. NaN compares false against every
// boundary and lands in the top bin.
func Color(magnitude float64) string {
	switch {
	case magnitude < 1:
		return ColorMicro
	case magnitude < 2:
		return ColorMinor
	case magnitude < 3:
		return ColorLight
	case magnitude < 4:
		return ColorModerate
	case magnitude < 5:
		return ColorStrong
	default:
		return ColorMajor
	}
}

// Radius maps a magnitude to a circle radius. It is not clamped.
func Radius(magnitude float64) float64 {
	return magnitude * RadiusScale
}

// StyleFor returns the full marker style for a magnitude.
func StyleFor(magnitude float64) MarkerStyle {
	return MarkerStyle{
		Color:       Color(magnitude),
		Radius:      Radius(magnitude),
		FillOpacity: FillOpacity,
	}
}
