// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// RoundWhole rounds to the nearest whole currency unit with ties going up
// (toward positive infinity), so -2.5 becomes -2 and 2.5 becomes 3.
func RoundWhole(val float64) int64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return decimal.NewFromFloat(val).Add(half).Floor().IntPart()
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Clamp bounds val to [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	return Min(Max(val, lo), hi)
}

// Sign returns -1, 0 or 1 according to the sign of val.
func Sign(val float64) float64 {
	switch {
	case val > 0:
		return 1
	case val < 0:
		return -1
	}
	return 0
}

// PercentChange returns delta as a percentage of base, with base floored at
// constants.PercentChangeFloor.
func PercentChange(delta, base float64) float64 {
	return delta / Max(base, constants.PercentChangeFloor) * constants.PercentageMultiplier
}
