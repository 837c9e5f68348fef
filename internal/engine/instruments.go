package engine

import (
	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/mathutil"
)

// Class identifies one of the seven instrument models.
type Class string

const (
	ClassMoneyMarket Class = "moneyMarket"
	ClassCD          Class = "cd"
	ClassBondFund    Class = "bondFund"
	ClassMYGA        Class = "myga"
	ClassFIA         Class = "fia"
	ClassSPIA        Class = "spia"
	ClassHELOC       Class = "heloc"
)

// Label returns the display name of an instrument class.
func (c Class) Label() string {
	switch c {
	case ClassMoneyMarket:
		return "Money Mkt"
	case ClassCD:
		return "CDs"
	case ClassBondFund:
		return "Bond Fund"
	case ClassMYGA:
		return "MYGA"
	case ClassFIA:
		return "FIA"
	case ClassSPIA:
		return "SPIA"
	case ClassHELOC:
		return "HELOC"
	}
	return string(c)
}

// Auxiliary is an informational readout that is reported next to an
// instrument's income but never summed into the totals.
type Auxiliary struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Projection is one instrument's annual income before and after a shock.
type Projection struct {
	Before float64
	After  float64
	Aux    *Auxiliary
}

// Instrument is implemented by exactly the seven holding types in this
// package.
type Instrument interface {
	Class() Class
	Included() bool
	Project(deltaY float64) Projection
	instrument()
}

// MoneyMarket reprices by a linear beta to the policy rate.
type MoneyMarket struct {
	Include bool `mapstructure:"included"`
	Balance float64
	APY     float64
	Beta    float64
}

func (MoneyMarket) Class() Class { return ClassMoneyMarket }
func (m MoneyMarket) Included() bool { return m.Include }
func (MoneyMarket) instrument() {}

func (m MoneyMarket) Project(deltaY float64) Projection {
	if !m.Include {
		return Projection{}
	}
	return Projection{
		Before: m.Balance * m.APY,
		After:  m.Balance * mathutil.Max(m.APY+m.Beta*deltaY, 0),
	}
}

// CD is one row of a CD ladder. Rows have no include toggle.
type CD struct {
	Balance       float64
	APY           float64
	MonthsToRenew float64
	Passthrough   float64
}

func (CD) Class() Class { return ClassCD }
func (CD) Included() bool { return true }
func (CD) instrument() {}

// Project blends the current and repriced APY by time to renewal: a row
// renewing now earns the new rate for the whole year, a row twelve or more
// months out keeps its current rate.
func (c CD) Project(deltaY float64) Projection {
	apyAfter := mathutil.Max(c.APY+c.Passthrough*deltaY, 0)
	wNow := mathutil.Clamp(c.MonthsToRenew/constants.MonthsPerYear, 0, 1)
	return Projection{
		Before: c.Balance * c.APY,
		After:  c.Balance * (c.APY*wNow + apyAfter*(1-wNow)),
	}
}

// BondFund reprices its SEC yield by a pass-through share of the shock.
type BondFund struct {
	Include     bool `mapstructure:"included"`
	Value       float64
	SECYield    float64
	Duration    float64
	Passthrough float64
}

func (BondFund) Class() Class { return ClassBondFund }
func (b BondFund) Included() bool { return b.Include }
func (BondFund) instrument() {}

// Project also reports the first-order duration price change of the fund.
func (b BondFund) Project(deltaY float64) Projection {
	aux := &Auxiliary{Name: "pricePnL", Value: b.Value * (-b.Duration * deltaY)}
	if !b.Include {
		return Projection{Aux: aux}
	}
	return Projection{
		Before: b.Value * b.SECYield,
		After:  b.Value * mathutil.Max(b.SECYield+b.Passthrough*deltaY, 0),
		Aux:    aux,
	}
}

// MYGA is a multi-year guaranteed annuity. Term and RiderCount only select
// the rate from the preset table; the projection uses Rate.
type MYGA struct {
	Include    bool `mapstructure:"included"`
	Amount     float64
	Rate       float64
	Term       int
	RiderCount int
}

func (MYGA) Class() Class { return ClassMYGA }
func (m MYGA) Included() bool { return m.Include }
func (MYGA) instrument() {}

func (m MYGA) Project(deltaY float64) Projection {
	if !m.Include {
		return Projection{}
	}
	return Projection{
		Before: m.Amount * m.Rate,
		After:  m.Amount * mathutil.Max(m.Rate+constants.MYGASensitivity*deltaY, 0),
	}
}

// FIA is a fixed indexed annuity credited at the lesser of its cap and its
// participation-implied rate. StartAge is informational.
type FIA struct {
	Include       bool `mapstructure:"included"`
	Amount        float64
	Cap           float64
	Participation float64
	RiderFee      float64
	PayoutFactor  float64
	StartAge      int
}

func (FIA) Class() Class { return ClassFIA }
func (f FIA) Included() bool { return f.Include }
func (FIA) instrument() {}

// Project shifts participation by a full step in the direction of any
// nonzero shock regardless of its size. The income proxy readout is payout
// income net of the rider fee.
func (f FIA) Project(deltaY float64) Projection {
	aux := &Auxiliary{Name: "incomeProxy", Value: f.Amount*f.PayoutFactor - f.Amount*f.RiderFee}
	if !f.Include {
		return Projection{Aux: aux}
	}

	creditNow := mathutil.Min(f.Cap, f.Participation*constants.FIAReferenceIndexReturn)
	sign := mathutil.Sign(deltaY)
	capAfter := mathutil.Max(f.Cap+constants.FIACapSensitivity*deltaY, 0)
	parAfter := mathutil.Max((f.Participation+constants.FIAParticipationStep*sign)*constants.FIAReferenceIndexReturn, 0)
	creditAfter := mathutil.Min(capAfter, parAfter)

	return Projection{
		Before: f.Amount * creditNow,
		After:  f.Amount * mathutil.Max(creditAfter, 0),
		Aux:    aux,
	}
}

// SPIA is a single premium immediate annuity. Its payout factor is not
// floored, so an extreme rate rise can drive the projection below zero.
type SPIA struct {
	Include      bool `mapstructure:"included"`
	Premium      float64
	PayoutFactor float64
}

func (SPIA) Class() Class { return ClassSPIA }
func (s SPIA) Included() bool { return s.Include }
func (SPIA) instrument() {}

func (s SPIA) Project(deltaY float64) Projection {
	if !s.Include {
		return Projection{}
	}
	return Projection{
		Before: s.Premium * s.PayoutFactor,
		After:  s.Premium * (s.PayoutFactor - constants.SPIAPayoutSensitivity*deltaY),
	}
}

// HELOC is variable-rate debt priced at prime plus a margin. Its interest is
// reported as negative income.
type HELOC struct {
	Include bool `mapstructure:"included"`
	Balance float64
	Margin  float64
}

func (HELOC) Class() Class { return ClassHELOC }
func (h HELOC) Included() bool { return h.Include }
func (HELOC) instrument() {}

func (h HELOC) Project(deltaY float64) Projection {
	if !h.Include {
		return Projection{}
	}
	return Projection{
		Before: -h.Balance * (constants.HELOCPrimeSpread + h.Margin),
		After:  -h.Balance * (constants.HELOCPrimeSpread + h.Margin + deltaY),
	}
}
