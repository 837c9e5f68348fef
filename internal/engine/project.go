package engine

import "fmt"

// HoldingSet is every holding of a household. CDs may hold zero or more
// ladder rows.
type HoldingSet struct {
	MoneyMarket MoneyMarket
	CDs         []CD
	BondFund    BondFund
	MYGA        MYGA
	FIA         FIA
	SPIA        SPIA
	HELOC       HELOC
}

// Instruments lists the holdings in display order.
func (h HoldingSet) Instruments() []Instrument {
	instruments := make([]Instrument, 0, 6+len(h.CDs))
	instruments = append(instruments, h.MoneyMarket)
	for _, cd := range h.CDs {
		instruments = append(instruments, cd)
	}
	return append(instruments, h.BondFund, h.MYGA, h.FIA, h.SPIA, h.HELOC)
}

// Result is a complete projection. Real is only set when the scenario asks
// for inflation-adjusted figures.
type Result struct {
	Scenario string  `json:"scenario"`
	Shock    Shock   `json:"shock"`
	CPI      float64 `json:"cpi"`
	Nominal  View    `json:"nominal"`
	Real     *View   `json:"real,omitempty"`
}

// Display returns the view a report should show: real when requested,
// otherwise nominal.
func (r Result) Display() View {
	if r.Real != nil {
		return *r.Real
	}
	return r.Nominal
}

// Project computes before and after income for every holding under the
// scenario's rate shock.
func Project(holdings HoldingSet, scenario Scenario) Result {
	shock := scenario.Shock()

	var lines []Line
	cdIndex := 0
	for _, inst := range holdings.Instruments() {
		p := inst.Project(shock.DeltaY)
		line := Line{
			Class:    inst.Class(),
			Label:    inst.Class().Label(),
			Included: inst.Included(),
			Before:   p.Before,
			After:    p.After,
			Delta:    p.After - p.Before,
			Aux:      p.Aux,
		}
		if inst.Class() == ClassCD {
			index := cdIndex
			line.Index = &index
			line.Label = fmt.Sprintf("CD #%d", cdIndex+1)
			cdIndex++
		}
		lines = append(lines, line)
	}

	nominal := View{Lines: lines, Totals: Aggregate(lines)}
	result := Result{
		Scenario: scenario.Label(),
		Shock:    shock,
		Nominal:  nominal,
	}

	adjuster := NewAdjuster(scenario.ShowReal, scenario.CPI)
	if adjuster.ShowReal {
		realView := adjuster.View(nominal)
		result.Real = &realView
		result.CPI = adjuster.CPI
	}
	return result
}

// Compare projects the holdings under each canned shock, followed by the
// custom shock when the scenario selects one.
func Compare(holdings HoldingSet, scenario Scenario) []Result {
	results := make([]Result, 0, len(CannedSelectors)+1)
	for _, selector := range CannedSelectors {
		canned := scenario
		canned.Selector = selector
		results = append(results, Project(holdings, canned))
	}
	if !scenario.Selector.Canned() {
		results = append(results, Project(holdings, scenario))
	}
	return results
}
