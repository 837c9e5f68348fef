// Package engine projects a household's annual income from rate-sensitive
// holdings before and after a central-bank rate shock.
//
// Every function in this package is a pure function of its arguments. Nothing
// is cached and nothing is shared between calls, so a caller recomputes the
// whole projection whenever any parameter changes.
package engine

import (
	"strings"

	"github.com/iwvelando/rate-impact/pkg/coerce"
	"github.com/iwvelando/rate-impact/pkg/constants"
)

// Selector picks one of the canned rate shocks or a custom value.
type Selector string

const (
	SelectorConservative Selector = "-25"
	SelectorModerate     Selector = "-50"
	SelectorAggressive   Selector = "-100"
	SelectorCustom       Selector = "custom"
)

// CannedSelectors lists the fixed scenarios in display order.
var CannedSelectors = []Selector{SelectorConservative, SelectorModerate, SelectorAggressive}

// Canned reports whether the selector names one of the fixed shocks.
func (s Selector) Canned() bool {
	for _, canned := range CannedSelectors {
		if s == canned {
			return true
		}
	}
	return false
}

// Scenario is the complete rate-shock input to a projection.
type Scenario struct {
	Selector  Selector
	CustomBps int
	ShowReal  bool
	CPI       float64
}

// Shock is a resolved rate delta.
type Shock struct {
	Bps    int     `json:"bps"`
	DeltaY float64 `json:"deltaY"`
}

// NewShock derives the fractional rate delta from a basis point count.
func NewShock(bps int) Shock {
	return Shock{Bps: bps, DeltaY: float64(bps) / constants.BasisPointsPerUnit}
}

// Resolve turns a selector into a shock. Unknown selectors fall through to
// the custom value.
func Resolve(selector Selector, customBps int) Shock {
	switch selector {
	case SelectorConservative:
		return NewShock(constants.ConservativeBps)
	case SelectorModerate:
		return NewShock(constants.ModerateBps)
	case SelectorAggressive:
		return NewShock(constants.AggressiveBps)
	}
	return NewShock(customBps)
}

// Shock resolves the scenario's rate delta.
func (s Scenario) Shock() Shock {
	return Resolve(s.Selector, s.CustomBps)
}

// Label describes the scenario for reports.
func (s Scenario) Label() string {
	switch s.Selector {
	case SelectorConservative:
		return "Conservative"
	case SelectorModerate:
		return "Moderate"
	case SelectorAggressive:
		return "Aggressive"
	}
	return "Custom"
}

// ParseSelector reads a selector from user input. Canned scenarios may be
// named or given as their bps value; anything else is treated as a custom
// bps value, and non-numeric text yields a custom shock of 0.
func ParseSelector(s string) (Selector, int) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	switch trimmed {
	case "conservative", string(SelectorConservative):
		return SelectorConservative, 0
	case "moderate", string(SelectorModerate), "":
		return SelectorModerate, 0
	case "aggressive", string(SelectorAggressive):
		return SelectorAggressive, 0
	case string(SelectorCustom):
		return SelectorCustom, 0
	}
	return SelectorCustom, coerce.Int(trimmed)
}
