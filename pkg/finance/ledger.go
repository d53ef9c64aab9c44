// Package finance provides the dual-account ledger and rate helpers used by
// the monthly simulation.
package finance

import (
	"math"

	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/mathutil"
)

// Params holds the regime constants of a run. They are used as given: a
// zero CapLimit leaves no exempt room and a zero TaxRate leaves taxable gains
// untaxed.
type Params struct {
	CapLimit int64   `json:"capLimit" yaml:"capLimit"`
	TaxRate  float64 `json:"taxRate" yaml:"taxRate"`
}

// DefaultParams returns the lifetime cap of 18,000,000 yen and the 20.315%
// flat tax.
func DefaultParams() Params {
	return Params{CapLimit: constants.CapLimit, TaxRate: constants.TaxRate}
}

// Ledger is the balance state of one simulation run. Balances are whole yen
// after every operation and CapUsed never decreases.
type Ledger struct {
	Exempt  int64
	Taxable int64
	CapUsed int64

	params Params
}

// NewLedger returns an empty ledger governed by params.
func NewLedger(params Params) *Ledger {
	return &Ledger{params: params}
}

// Params returns the regime constants the ledger was created with.
func (l *Ledger) Params() Params {
	return l.params
}

// Total is the combined balance of both accounts.
func (l *Ledger) Total() int64 {
	return l.Exempt + l.Taxable
}

// CapRemaining is the contribution room left in the exempt account.
func (l *Ledger) CapRemaining() int64 {
	return mathutil.NonNegative(l.params.CapLimit - l.CapUsed)
}

// Allocation reports where a contribution went.
type Allocation struct {
	ToExempt  int64
	ToTaxable int64
}

// Allocate deposits amount, filling the exempt account up to the remaining
// cap and sending the rest to the taxable account. Non-positive amounts are
// ignored.
func (l *Ledger) Allocate(amount int64) Allocation {
	if amount <= 0 {
		return Allocation{}
	}
	toExempt := min(amount, l.CapRemaining())
	toTaxable := amount - toExempt

	l.Exempt = mathutil.FloorYen(float64(l.Exempt) + float64(toExempt))
	l.Taxable = mathutil.FloorYen(float64(l.Taxable) + float64(toTaxable))
	l.CapUsed += toExempt

	return Allocation{ToExempt: toExempt, ToTaxable: toTaxable}
}

// Withdraw takes amount from the taxable account first and then from the
// exempt account. Anything beyond both balances is dropped. The amount
// actually withdrawn is returned; CapUsed is never reduced.
func (l *Ledger) Withdraw(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	fromTaxable := min(l.Taxable, amount)
	l.Taxable = mathutil.FloorYen(float64(l.Taxable - fromTaxable))
	remaining := amount - fromTaxable

	var fromExempt int64
	if remaining > 0 {
		fromExempt = min(l.Exempt, remaining)
		l.Exempt = mathutil.FloorYen(float64(l.Exempt - fromExempt))
	}

	return fromTaxable + fromExempt
}

// Apply routes a signed monthly flow to Allocate or Withdraw. It returns the
// contributed and withdrawn amounts.
func (l *Ledger) Apply(flow int64) (contributed, withdrawn int64) {
	switch {
	case flow > 0:
		l.Allocate(flow)
		return flow, 0
	case flow < 0:
		return 0, l.Withdraw(-flow)
	}
	return 0, 0
}

// Grow applies one month of growth. The exempt account compounds untaxed.
// Positive gains of the taxable account are taxed at the flat rate; losses
// apply untaxed.
func (l *Ledger) Grow(monthlyRate float64) {
	l.Exempt = mathutil.FloorYen(float64(l.Exempt) * (1 + monthlyRate))

	balance := float64(l.Taxable)
	gain := balance * monthlyRate
	if gain >= 0 {
		l.Taxable = mathutil.FloorYen(balance + gain*(1-l.params.TaxRate))
	} else {
		l.Taxable = mathutil.FloorYen(balance + gain)
	}
}

// MonthlyRate converts a fractional annual rate into the equivalent monthly
// compounding rate.
func MonthlyRate(annualRate float64) float64 {
	return math.Pow(1+annualRate, 1.0/constants.MonthsPerYear) - 1
}
