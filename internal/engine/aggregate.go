package engine

import "github.com/iwvelando/rate-impact/pkg/mathutil"

// Line is one instrument row of a projection. Index is the zero-based
// position of a CD within the ladder and is nil for every other class.
type Line struct {
	Class    Class      `json:"class"`
	Index    *int       `json:"index,omitempty"`
	Label    string     `json:"label"`
	Included bool       `json:"included"`
	Before   float64    `json:"before"`
	After    float64    `json:"after"`
	Delta    float64    `json:"delta"`
	Aux      *Auxiliary `json:"aux,omitempty"`
}

// Totals summarizes a portfolio projection.
type Totals struct {
	Before        float64 `json:"before"`
	After         float64 `json:"after"`
	Delta         float64 `json:"delta"`
	PercentChange float64 `json:"percentChange"`
}

// View is a full set of lines with their totals, in either nominal or real
// terms.
type View struct {
	Lines  []Line `json:"lines"`
	Totals Totals `json:"totals"`
}

// Aggregate sums the included lines. The percent change uses a baseline
// floored at one currency unit so an empty portfolio reports 0%.
func Aggregate(lines []Line) Totals {
	var totals Totals
	for _, line := range lines {
		if !line.Included {
			continue
		}
		totals.Before += line.Before
		totals.After += line.After
	}
	return finishTotals(totals)
}

func finishTotals(totals Totals) Totals {
	totals.Delta = totals.After - totals.Before
	totals.PercentChange = mathutil.PercentChange(totals.Delta, totals.Before)
	return totals
}
