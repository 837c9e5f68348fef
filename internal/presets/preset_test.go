package presets

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/rate-impact/internal/engine"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	list, err := table.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	regions := make([]string, 0, len(list))
	for _, p := range list {
		regions = append(regions, p.Region)
	}
	if got := strings.Join(regions, ","); got != "CA,FL,NY,TX,US" {
		t.Errorf("expected sorted regions CA,FL,NY,TX,US, got %s", got)
	}

	for _, p := range list {
		for riders := 0; riders <= MaxRiderCount; riders++ {
			for _, term := range MYGATerms {
				if _, err := p.MYGA.Lookup(riders, term); err != nil {
					t.Errorf("%s: missing MYGA rate for %d riders, term %d", p.Region, riders, term)
				}
			}
		}
		if p.MMAPY <= 0 || p.CD1Y <= 0 || p.SPIAFactor <= 0 {
			t.Errorf("%s: expected positive rates, got %+v", p.Region, p)
		}
	}
}

func TestTableGet(t *testing.T) {
	table := DefaultTable()

	p, err := table.Get(context.Background(), " tx ")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Region != "TX" || p.Name != "Texas" {
		t.Errorf("unexpected preset %+v", p)
	}

	_, err = table.Get(context.Background(), "ZZ")
	if !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("expected ErrUnknownRegion, got %v", err)
	}
}

func TestLoadTableRejectsDuplicates(t *testing.T) {
	input := `
- region: us
  name: one
- region: US
  name: two
`
	if _, err := LoadTable(strings.NewReader(input)); err == nil {
		t.Fatal("expected duplicate region error")
	}

	if _, err := LoadTable(strings.NewReader("- name: nameless\n")); err == nil {
		t.Fatal("expected missing region error")
	}

	if _, err := LoadTable(strings.NewReader("not: [a list")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMYGALookup(t *testing.T) {
	table := MYGATable{
		0: {5: 0.053},
		1: {5: 0.0505},
	}

	rate, err := table.Lookup(1, 5)
	if err != nil || rate != 0.0505 {
		t.Errorf("Lookup(1, 5) = %v, %v", rate, err)
	}

	if _, err := table.Lookup(0, 4); !errors.Is(err, ErrUnknownTerm) {
		t.Errorf("expected ErrUnknownTerm for term 4, got %v", err)
	}
	if _, err := table.Lookup(3, 5); !errors.Is(err, ErrUnknownTerm) {
		t.Errorf("expected ErrUnknownTerm for 3 riders, got %v", err)
	}
}

func TestApply(t *testing.T) {
	p, err := DefaultTable().Get(context.Background(), "FL")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	holdings := engine.HoldingSet{
		MoneyMarket: engine.MoneyMarket{Include: true, Balance: 1000, APY: 0.01, Beta: 0.9},
		CDs:         []engine.CD{{Balance: 500, APY: 0.02, MonthsToRenew: 3}, {Balance: 700, APY: 0.03}},
		MYGA:        engine.MYGA{Include: true, Amount: 100, Rate: 0.01, Term: 7, RiderCount: 1},
		FIA:         engine.FIA{Include: true, Amount: 100, Cap: 0.01, Participation: 1},
		SPIA:        engine.SPIA{Premium: 100, PayoutFactor: 0.01},
	}

	updated, err := Apply(p, holdings)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if updated.MoneyMarket.APY != 0.0455 || updated.MoneyMarket.Balance != 1000 || updated.MoneyMarket.Beta != 0.9 {
		t.Errorf("unexpected money market %+v", updated.MoneyMarket)
	}
	for i, cd := range updated.CDs {
		if cd.APY != 0.0525 {
			t.Errorf("CD %d: expected APY 0.0525, got %v", i, cd.APY)
		}
	}
	if updated.CDs[0].MonthsToRenew != 3 {
		t.Error("Apply should keep CD months to renew")
	}
	if updated.MYGA.Rate != 0.0520 {
		t.Errorf("expected MYGA rate 0.0520, got %v", updated.MYGA.Rate)
	}
	if updated.FIA.Cap != 0.0625 || updated.FIA.Participation != 1.75 {
		t.Errorf("unexpected FIA %+v", updated.FIA)
	}
	if updated.SPIA.PayoutFactor != 0.0740 {
		t.Errorf("unexpected SPIA %+v", updated.SPIA)
	}

	if holdings.CDs[0].APY != 0.02 || holdings.MoneyMarket.APY != 0.01 {
		t.Error("Apply modified its input holdings")
	}
}

func TestApplyUnknownTermKeepsRate(t *testing.T) {
	p, _ := DefaultTable().Get(context.Background(), "US")
	holdings := engine.HoldingSet{MYGA: engine.MYGA{Include: true, Amount: 100, Rate: 0.049, Term: 4}}

	updated, err := Apply(p, holdings)
	if !errors.Is(err, ErrUnknownTerm) {
		t.Fatalf("expected ErrUnknownTerm, got %v", err)
	}
	if updated.MYGA.Rate != 0.049 {
		t.Errorf("expected existing MYGA rate kept, got %v", updated.MYGA.Rate)
	}
	if updated.MoneyMarket.APY != p.MMAPY {
		t.Error("other preset rates should still be applied")
	}
}
