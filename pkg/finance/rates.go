package finance

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/iwvelando/nisa-forecast/pkg/constants"
)

var rateSeparators = regexp.MustCompile(`[\s,、]+`)

// NormalizeRate reads values of 1 or more as percentages and smaller values
// as fractions, so 3 and 0.03 both mean three percent.
func NormalizeRate(rate float64) float64 {
	if rate >= 1 {
		return rate / constants.PercentageMultiplier
	}
	return rate
}

// RatePercent renders a rate in either form as a whole percentage.
func RatePercent(rate float64) int {
	return int(math.Round(NormalizeRate(rate) * constants.PercentageMultiplier))
}

// ParseRates splits text on whitespace, commas and ideographic commas and
// returns the rates as written, percent or fraction. Tokens that are not
// finite numbers are dropped. NormalizeRate is left to the consumer so a
// value is normalized exactly once.
func ParseRates(text string) []float64 {
	rates := []float64{}
	for _, token := range rateSeparators.Split(text, -1) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		rates = append(rates, v)
	}
	return rates
}
