// Package presets holds the read-only table of representative market rates
// by region and applies a region's rates to a set of holdings.
package presets

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/rate-impact/internal/engine"
)

var (
	// ErrUnknownRegion is returned when no preset exists for a region code.
	ErrUnknownRegion = errors.New("unknown region")

	// ErrUnknownTerm is returned when the MYGA table has no rate for a
	// term and rider count.
	ErrUnknownTerm = errors.New("no MYGA rate for term")
)

// MYGATerms are the guarantee periods offered, in years.
var MYGATerms = []int{3, 5, 7, 10}

// MaxRiderCount is the largest number of MYGA riders priced by the table.
const MaxRiderCount = 2

// MYGATable maps rider count, then term in years, to a guaranteed rate.
type MYGATable map[int]map[int]float64

// Lookup returns the guaranteed rate for a rider count and term.
func (t MYGATable) Lookup(riderCount, term int) (float64, error) {
	byTerm, ok := t[riderCount]
	if !ok {
		return 0, fmt.Errorf("%w %d with %d riders", ErrUnknownTerm, term, riderCount)
	}
	rate, ok := byTerm[term]
	if !ok {
		return 0, fmt.Errorf("%w %d with %d riders", ErrUnknownTerm, term, riderCount)
	}
	return rate, nil
}

// Preset is the bundle of representative rates for one region.
type Preset struct {
	Region     string    `yaml:"region" json:"region"`
	Name       string    `yaml:"name" json:"name"`
	MMAPY      float64   `yaml:"mmApy" json:"mmApy"`
	CD1Y       float64   `yaml:"cd1y" json:"cd1y"`
	FIACap     float64   `yaml:"fiaCap" json:"fiaCap"`
	FIAPar     float64   `yaml:"fiaPar" json:"fiaPar"`
	SPIAFactor float64   `yaml:"spiaFactor" json:"spiaFactor"`
	MYGA       MYGATable `yaml:"myga" json:"myga"`
}

// NormalizeRegion canonicalizes a region code for lookups.
func NormalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

// Apply returns a copy of holdings with the preset's rates written over the
// matching parameters. Balances, toggles and other parameters are kept. When
// the MYGA table has no rate for the holding's term and rider count, the
// existing MYGA rate is kept and an ErrUnknownTerm error is returned along
// with the otherwise updated holdings.
func Apply(p Preset, holdings engine.HoldingSet) (engine.HoldingSet, error) {
	updated := holdings
	updated.MoneyMarket.APY = p.MMAPY

	updated.CDs = make([]engine.CD, len(holdings.CDs))
	for i, cd := range holdings.CDs {
		cd.APY = p.CD1Y
		updated.CDs[i] = cd
	}

	updated.FIA.Cap = p.FIACap
	updated.FIA.Participation = p.FIAPar
	updated.SPIA.PayoutFactor = p.SPIAFactor

	rate, err := p.MYGA.Lookup(holdings.MYGA.RiderCount, holdings.MYGA.Term)
	if err != nil {
		return updated, fmt.Errorf("region %s: %w", p.Region, err)
	}
	updated.MYGA.Rate = rate
	return updated, nil
}

func sortPresets(list []Preset) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Region < list[j].Region
	})
}
