package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/rate-impact/internal/engine"
	"github.com/iwvelando/rate-impact/internal/presets"
)

// ToScenario converts the scenario settings into an engine scenario. A
// numeric selector that is not a canned shock is a custom shock of that size.
func (s ScenarioConfig) ToScenario() engine.Scenario {
	selector, bps := engine.ParseSelector(s.Selector)
	if selector == engine.SelectorCustom && strings.EqualFold(strings.TrimSpace(s.Selector), string(engine.SelectorCustom)) {
		bps = s.CustomBps
	}
	return engine.Scenario{
		Selector:  selector,
		CustomBps: bps,
		ShowReal:  s.ShowReal,
		CPI:       s.CPI,
	}
}

// Resolve returns the holdings and scenario to project. When ApplyPreset is
// set, the region's preset rates are written over the holdings first; a
// missing MYGA rate is reported as a warning and the configured rate kept.
func (c *Configuration) Resolve(ctx context.Context, store presets.Store) (engine.HoldingSet, engine.Scenario, []string, error) {
	holdings := c.Holdings
	scenario := c.Scenario.ToScenario()
	if !c.ApplyPreset {
		return holdings, scenario, nil, nil
	}

	preset, err := store.Get(ctx, c.Region)
	if err != nil {
		return engine.HoldingSet{}, engine.Scenario{}, nil, fmt.Errorf("failed to load preset: %w", err)
	}

	var warnings []string
	holdings, err = presets.Apply(preset, holdings)
	if err != nil {
		if !errors.Is(err, presets.ErrUnknownTerm) {
			return engine.HoldingSet{}, engine.Scenario{}, nil, err
		}
		warnings = append(warnings, err.Error())
	}
	return holdings, scenario, warnings, nil
}
