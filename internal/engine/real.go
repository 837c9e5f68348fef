package engine

// Adjuster converts nominal currency figures into real terms by deflating
// them with a single CPI assumption.
type Adjuster struct {
	ShowReal bool
	CPI      float64
}

// NewAdjuster builds an adjuster. A CPI at or below -100% cannot deflate
// anything meaningfully and is treated as 0.
func NewAdjuster(showReal bool, cpi float64) Adjuster {
	if cpi <= -1 {
		cpi = 0
	}
	return Adjuster{ShowReal: showReal, CPI: cpi}
}

// Value adjusts one figure.
func (a Adjuster) Value(n float64) float64 {
	if !a.ShowReal || a.CPI <= -1 {
		return n
	}
	return n / (1 + a.CPI)
}

// View adjusts every line and total of a view. Line figures and totals are
// scaled by the same factor, so summing adjusted lines gives the adjusted
// totals. The percent change is recomputed from the adjusted totals.
func (a Adjuster) View(v View) View {
	lines := make([]Line, len(v.Lines))
	for i, line := range v.Lines {
		adjusted := line
		adjusted.Before = a.Value(line.Before)
		adjusted.After = a.Value(line.After)
		adjusted.Delta = adjusted.After - adjusted.Before
		if line.Aux != nil {
			aux := *line.Aux
			aux.Value = a.Value(aux.Value)
			adjusted.Aux = &aux
		}
		lines[i] = adjusted
	}

	totals := v.Totals
	totals.Before = a.Value(totals.Before)
	totals.After = a.Value(totals.After)
	return View{Lines: lines, Totals: finishTotals(totals)}
}
