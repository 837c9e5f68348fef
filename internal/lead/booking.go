package lead

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/mathutil"
)

// BookingURL builds the appointment link for a projected scenario. An empty
// base uses the default booking page; blank attribution tags and product use
// their defaults.
func BookingURL(base string, deltaBps int, estDeltaIncome float64, product string, attr Attribution) (string, error) {
	if base == "" {
		base = constants.DefaultBookingURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse booking url: %w", err)
	}
	if product == "" {
		product = constants.DefaultProduct
	}
	attr = attr.withDefaults()

	q := u.Query()
	q.Set("utm_source", attr.Source)
	q.Set("utm_medium", attr.Medium)
	q.Set("utm_campaign", attr.Campaign)
	q.Set("delta_bps", strconv.Itoa(deltaBps))
	q.Set("est_delta_income", strconv.FormatInt(mathutil.RoundWhole(estDeltaIncome), 10))
	q.Set("product", product)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
