// Package format renders yen amounts and rates for display.
package format

import (
	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/finance"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Japanese)

// Yen returns an amount with thousands separators and the yen suffix (e.g., "-1,234,567円").
func Yen(amount int64) string {
	return printer.Sprintf("%d円", amount)
}

// NumericYen returns an amount with separators but without a suffix (e.g., "1,234,567").
func NumericYen(amount int64) string {
	return printer.Sprintf("%d", amount)
}

// Percent renders a rate in either fraction or percent form with two decimals (e.g., "5.00%").
func Percent(rate float64) string {
	pct := decimal.NewFromFloat(finance.NormalizeRate(rate)).Mul(decimal.NewFromFloat(constants.PercentageMultiplier))
	return pct.StringFixed(2) + "%"
}
