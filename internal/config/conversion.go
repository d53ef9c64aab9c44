package config

import (
	"strings"
	"time"

	"github.com/iwvelando/nisa-forecast/internal/forecast"
	"github.com/iwvelando/nisa-forecast/pkg/datetime"
	"github.com/iwvelando/nisa-forecast/pkg/finance"
	"github.com/spf13/cast"
)

// ToScenario converts a config scenario into a forecast.Scenario. An empty
// start month resolves to the current month.
func (s Scenario) ToScenario() forecast.Scenario {
	return s.ToScenarioAt(time.Now())
}

// ToScenarioAt is ToScenario with an injectable clock.
func (s Scenario) ToScenarioAt(now time.Time) forecast.Scenario {
	startYm := s.StartYm
	if startYm == "" {
		startYm = datetime.CurrentYearMonth(now)
	}

	return forecast.Scenario{
		Name:            s.Name,
		StartYm:         startYm,
		InitialLump:     s.InitialLump,
		DurationYears:   s.DurationYears,
		Mode:            strings.ToLower(strings.TrimSpace(s.Mode)),
		MonthlyInvest:   s.MonthlyInvest,
		MonthlyWithdraw: s.MonthlyWithdraw,
		WithdrawStartYm: s.WithdrawStartYm,
		Blocks:          s.Blocks,
		DSLText:         s.DSLText,
		RatesPercent:    s.RateList(),
	}
}

// RateList returns the configured rates as written. A string value is split
// the way ParseRates does; list entries that are not numbers are dropped.
// Rates stay in their percent or fraction form until the engine normalizes
// them.
func (s Scenario) RateList() []float64 {
	switch v := s.Rates.(type) {
	case nil:
		return []float64{}
	case string:
		return finance.ParseRates(v)
	case []any:
		rates := make([]float64, 0, len(v))
		for _, item := range v {
			if text, ok := item.(string); ok {
				rates = append(rates, finance.ParseRates(text)...)
				continue
			}
			rate, err := cast.ToFloat64E(item)
			if err != nil {
				continue
			}
			rates = append(rates, rate)
		}
		return rates
	case []float64:
		return append([]float64{}, v...)
	default:
		rate, err := cast.ToFloat64E(v)
		if err != nil {
			return []float64{}
		}
		return []float64{rate}
	}
}

// FromScenario converts a forecast.Scenario back into its config form.
// Rates are kept as given.
func FromScenario(s forecast.Scenario, active bool) Scenario {
	rates := make([]any, 0, len(s.RatesPercent))
	for _, rate := range s.RatesPercent {
		rates = append(rates, rate)
	}
	return Scenario{
		Name:            s.Name,
		Active:          active,
		StartYm:         s.StartYm,
		InitialLump:     s.InitialLump,
		DurationYears:   s.DurationYears,
		Mode:            s.Mode,
		MonthlyInvest:   s.MonthlyInvest,
		MonthlyWithdraw: s.MonthlyWithdraw,
		WithdrawStartYm: s.WithdrawStartYm,
		Blocks:          s.Blocks,
		DSLText:         s.DSLText,
		Rates:           rates,
	}
}

// ToScenarios converts every active scenario.
func (c *Configuration) ToScenarios() []forecast.Scenario {
	active := c.ActiveScenarios()
	scenarios := make([]forecast.Scenario, 0, len(active))
	for _, s := range active {
		scenarios = append(scenarios, s.ToScenario())
	}
	return scenarios
}
