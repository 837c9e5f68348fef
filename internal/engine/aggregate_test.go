package engine

import (
	"testing"

	"github.com/iwvelando/rate-impact/pkg/mathutil"
)

func TestAggregateEmptyPortfolio(t *testing.T) {
	holdings := HoldingSet{
		MoneyMarket: MoneyMarket{Balance: 250000, APY: 0.045, Beta: 0.9},
		BondFund:    BondFund{Value: 300000, SECYield: 0.045, Duration: 5, Passthrough: 0.9},
		MYGA:        MYGA{Amount: 150000, Rate: 0.053},
		FIA:         FIA{Amount: 200000, Cap: 0.06, Participation: 1.7},
		SPIA:        SPIA{Premium: 150000, PayoutFactor: 0.072},
		HELOC:       HELOC{Balance: 100000, Margin: 0.01},
	}

	result := Project(holdings, Scenario{Selector: SelectorAggressive})
	totals := result.Nominal.Totals
	if totals.Before != 0 || totals.After != 0 || totals.Delta != 0 {
		t.Errorf("expected zero totals, got %+v", totals)
	}
	if totals.PercentChange != 0 {
		t.Errorf("expected 0%% change for an empty portfolio, got %v", totals.PercentChange)
	}
	if len(result.Nominal.Lines) != 6 {
		t.Errorf("expected excluded instruments to still be listed, got %d lines", len(result.Nominal.Lines))
	}
}

func TestAggregateSkipsExcludedLines(t *testing.T) {
	lines := []Line{
		{Class: ClassMoneyMarket, Included: true, Before: 100, After: 90},
		{Class: ClassSPIA, Included: false, Before: 1000, After: 2000},
		{Class: ClassCD, Included: true, Before: 50, After: 40},
	}

	totals := Aggregate(lines)
	if totals.Before != 150 || totals.After != 130 || totals.Delta != -20 {
		t.Errorf("unexpected totals %+v", totals)
	}
	if !mathutil.WithinTolerance(totals.PercentChange, -20.0/150*100, 1e-9) {
		t.Errorf("unexpected percent change %v", totals.PercentChange)
	}
}

func TestAggregateCDLadderRows(t *testing.T) {
	holdings := HoldingSet{
		CDs: []CD{
			{Balance: 50000, APY: 0.05, MonthsToRenew: 0, Passthrough: 1},
			{Balance: 50000, APY: 0.05, MonthsToRenew: 12, Passthrough: 1},
			{Balance: 20000, APY: 0.04, MonthsToRenew: 3, Passthrough: 0.5},
		},
	}

	result := Project(holdings, Scenario{Selector: SelectorAggressive})

	var before, after float64
	var cdLines int
	for _, line := range result.Nominal.Lines {
		if line.Class != ClassCD {
			if line.Index != nil {
				t.Errorf("expected no index on %s, got %d", line.Label, *line.Index)
			}
			continue
		}
		if line.Index == nil || *line.Index != cdLines {
			t.Errorf("expected CD index %d, got %v", cdLines, line.Index)
		}
		cdLines++
		before += line.Before
		after += line.After
	}
	if cdLines != 3 {
		t.Fatalf("expected 3 CD lines, got %d", cdLines)
	}

	// Row 1 reprices fully, row 2 not at all, row 3 is a quarter through.
	expectedAfter := 50000*0.04 + 50000*0.05 + 20000*(0.04*0.25+0.035*0.75)
	if !mathutil.WithinTolerance(result.Nominal.Totals.Before, before, 1e-9) || !mathutil.WithinTolerance(before, 5800, 1e-6) {
		t.Errorf("expected before 5800, got %v", result.Nominal.Totals.Before)
	}
	if !mathutil.WithinTolerance(result.Nominal.Totals.After, expectedAfter, 1e-6) || !mathutil.WithinTolerance(after, expectedAfter, 1e-6) {
		t.Errorf("expected after %v, got %v", expectedAfter, result.Nominal.Totals.After)
	}
}

func TestAggregateMatchesLineSums(t *testing.T) {
	result := Project(sampleHoldings(), Scenario{Selector: SelectorModerate})

	var before, after float64
	for _, line := range result.Nominal.Lines {
		if line.Included {
			before += line.Before
			after += line.After
		}
	}
	totals := result.Nominal.Totals
	if !mathutil.WithinTolerance(before, totals.Before, 1e-9) || !mathutil.WithinTolerance(after, totals.After, 1e-9) {
		t.Errorf("totals %+v do not decompose into line sums (%v, %v)", totals, before, after)
	}
	if !mathutil.WithinTolerance(totals.Delta, totals.After-totals.Before, 1e-9) {
		t.Errorf("delta %v is not after - before", totals.Delta)
	}
}
