package domain

import "strconv"

// legendGrades are the lower bounds shown in the map legend.
var legendGrades = []float64{0, 1, 2, 3, 4, 5}

// LegendEntry is one row of the magnitude legend. Upper is nil for the open top bin.
type LegendEntry struct {
	Lower float64  `json:"lower"`
	Upper *float64 `json:"upper,omitempty"`
	Color string   `json:"color"`
	Label string   `json:"label"`
}

// Legend returns the legend rows, lowest grade first.
func Legend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(legendGrades))
	for i, lower := range legendGrades {
		e := LegendEntry{Lower: lower, Color: Color(lower)}
		if i+1 < len(legendGrades) {
			upper := legendGrades[i+1]
			e.Upper = &upper
			e.Label = formatGrade(lower) + "–" + formatGrade(upper)
		} else {
			e.Label = formatGrade(lower) + "+"
		}
		entries = append(entries, e)
	}
	return entries
}

func formatGrade(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
