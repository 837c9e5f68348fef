// Package coerce converts loosely typed user input into numbers and booleans.
// Values that cannot be parsed become zero instead of producing an error, which
// keeps a half-edited form or config field from rejecting a whole projection.
package coerce

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Float parses s as a float64, returning 0 for blank or non-numeric input.
func Float(s string) float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Int parses s as an integer. Fractional input is truncated toward zero,
// out-of-range input saturates at the int limits and non-numeric input
// becomes 0.
func Int(s string) int {
	trimmed := strings.TrimSpace(s)
	if v, err := strconv.Atoi(trimmed); err == nil {
		return v
	}
	return clampInt(Float(trimmed))
}

// Integer coerces an arbitrary decoded value into an int with the same rules
// as Int.
func Integer(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case string:
		return Int(v)
	}
	return clampInt(Number(value))
}

func clampInt(v float64) int {
	switch {
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	}
	return int(v)
}

// Number coerces an arbitrary decoded value into a float64.
func Number(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case float32:
		return Number(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		return Float(v.String())
	case string:
		return Float(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Bool coerces an arbitrary decoded value into a bool.
func Bool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
		switch strings.ToLower(trimmed) {
		case "yes", "y", "on":
			return true
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		if parsed, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return parsed != 0
		}
	}
	return false
}

// DecodeHook returns a mapstructure hook that applies the coercion rules above
// whenever a string is decoded into a numeric or boolean field.
func DecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		s, _ := data.(string)
		switch to.Kind() {
		case reflect.Float32, reflect.Float64:
			return Float(s), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Int(s), nil
		case reflect.Bool:
			return Bool(s), nil
		}
		return data, nil
	}
}
