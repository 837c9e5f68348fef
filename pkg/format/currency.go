// Package format renders money and rates for reports.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	return withSymbol(decimal.NewFromFloat(amount).Round(2).StringFixed(2))
}

// WholeCurrency returns a currency string rounded to whole dollars with ties
// going up (e.g., "-$1,235", and -2.5 renders as "-$2").
func WholeCurrency(amount float64) string {
	return withSymbol(strconv.FormatInt(mathutil.RoundWhole(amount), 10))
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	s := decimal.NewFromFloat(amount).Round(2).StringFixed(2)
	if strings.HasPrefix(s, "-") {
		return "-" + group(s[1:])
	}
	return group(s)
}

// Percent renders a fraction as a percentage with one decimal (0.0525 -> "5.3%").
func Percent(fraction float64) string {
	return decimal.NewFromFloat(fraction * constants.PercentageMultiplier).StringFixed(1) + "%"
}

// PercentChange renders a value already expressed in percent (-6.81 -> "-6.8%").
func PercentChange(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(1) + "%"
}

// Bps renders a signed basis point count (e.g., "-50 bps").
func Bps(bps int) string {
	return fmt.Sprintf("%d bps", bps)
}

func withSymbol(s string) string {
	if strings.HasPrefix(s, "-") {
		return "-$" + group(s[1:])
	}
	return "$" + group(s)
}

func group(s string) string {
	intPart, decPart, hasDec := strings.Cut(s, ".")
	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}
	if !hasDec {
		return intPart
	}
	return intPart + "." + decPart
}
