// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/rate-impact/internal/engine"
)

// FindLine finds a line by label in a projection view.
// Returns a pointer to the line if found, nil otherwise.
func FindLine(view engine.View, label string) *engine.Line {
	for i := range view.Lines {
		if view.Lines[i].Label == label {
			return &view.Lines[i]
		}
	}
	return nil
}

// FindResult finds a result by its shock in basis points.
func FindResult(results []engine.Result, bps int) *engine.Result {
	for i := range results {
		if results[i].Shock.Bps == bps {
			return &results[i]
		}
	}
	return nil
}
