package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/mathutil"
)

// HoldingAmount is a named dollar figure from a holdings section.
type HoldingAmount struct {
	Name     string
	Amount   float64
	Included bool
}

// ConfigValidator gathers the holding and scenario fields worth warning about.
// Nothing here rejects a configuration; the models floor, clamp or coerce
// every out-of-range value, so the warnings only tell the user it happened.
type ConfigValidator struct {
	Amounts       []HoldingAmount
	MonthsToRenew []float64
	MYGATerm      int
	RiderCount    int
	CPI           float64
	ShowReal      bool
	Selector      string
	UnknownKeys   []string
}

// ValidateNonNegative warns about a negative balance or amount.
func ValidateNonNegative(name string, amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("%s is negative (%.2f)", name, amount)
	}
	return ""
}

// ValidateMonthsToRenew warns when a CD renewal horizon falls outside a year.
func ValidateMonthsToRenew(row int, months float64) string {
	if months < 0 || months > constants.MonthsPerYear {
		return fmt.Sprintf("CD #%d monthsToRenew %.1f is outside 0-12 and will be clamped", row, months)
	}
	return ""
}

// ValidateMYGATerm warns when the MYGA term has no preset rate.
func ValidateMYGATerm(term int) string {
	for _, t := range []int{3, 5, 7, 10} {
		if term == t {
			return ""
		}
	}
	return fmt.Sprintf("MYGA term %d is not one of 3, 5, 7 or 10 years; preset rates will not apply", term)
}

// ValidateRiderCount warns when the rider count has no preset rate.
func ValidateRiderCount(n int) string {
	if n < 0 || n > 2 {
		return fmt.Sprintf("MYGA rider count %d is not between 0 and 2; preset rates will not apply", n)
	}
	return ""
}

// ValidateCPI warns about an inflation rate that cannot deflate income.
func ValidateCPI(cpi float64) string {
	if cpi <= -1 {
		return fmt.Sprintf("cpi %.4f is at or below -100%% and will be treated as 0", cpi)
	}
	return ""
}

// ValidateIncluded warns when no included holding carries a balance.
func ValidateIncluded(amounts []HoldingAmount) string {
	for _, a := range amounts {
		if a.Included && !mathutil.IsZero(a.Amount) {
			return ""
		}
	}
	return "no included holding has a balance; every projection will be zero"
}

// ValidateSelector warns when a scenario selector is neither a named shock
// nor a number.
func ValidateSelector(selector string) string {
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "", "custom", "conservative", "moderate", "aggressive":
		return ""
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(selector), 64); err == nil {
		return ""
	}
	return fmt.Sprintf("scenario selector %q is not recognized and will be treated as a 0 bps shock", selector)
}

// ValidateUnknownKey warns about an input key that matches no setting.
func ValidateUnknownKey(key string) string {
	return fmt.Sprintf("unknown configuration key %q is ignored", key)
}

// ValidateAll validates the collected fields and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string
	add := func(w string) {
		if w != "" {
			warnings = append(warnings, w)
		}
	}

	for _, a := range cv.Amounts {
		add(ValidateNonNegative(a.Name, a.Amount))
	}
	if len(cv.Amounts) > 0 {
		add(ValidateIncluded(cv.Amounts))
	}
	for i, m := range cv.MonthsToRenew {
		add(ValidateMonthsToRenew(i+1, m))
	}
	add(ValidateMYGATerm(cv.MYGATerm))
	add(ValidateRiderCount(cv.RiderCount))
	add(ValidateSelector(cv.Selector))
	if cv.ShowReal {
		add(ValidateCPI(cv.CPI))
	}
	for _, key := range cv.UnknownKeys {
		add(ValidateUnknownKey(key))
	}
	return warnings
}
