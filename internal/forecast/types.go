// Package forecast defines scenarios and projection results and includes the
// monthly simulation engine and the rate sweep that drives it.
package forecast

import (
	"github.com/iwvelando/nisa-forecast/pkg/finance"
	"github.com/iwvelando/nisa-forecast/pkg/schedule"
	"github.com/iwvelando/nisa-forecast/pkg/validation"
)

// Scenario is one projection request.
type Scenario struct {
	ID              string                 `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string                 `json:"name" yaml:"name"`
	StartYm         string                 `json:"startYm" yaml:"startYm"`
	InitialLump     int64                  `json:"initialLump" yaml:"initialLump"`
	DurationYears   float64                `json:"durationYears" yaml:"durationYears"`
	Mode            string                 `json:"mode" yaml:"mode"`
	MonthlyInvest   int64                  `json:"monthlyInvest,omitempty" yaml:"monthlyInvest,omitempty"`
	MonthlyWithdraw int64                  `json:"monthlyWithdraw,omitempty" yaml:"monthlyWithdraw,omitempty"`
	WithdrawStartYm string                 `json:"withdrawStartYm,omitempty" yaml:"withdrawStartYm,omitempty"`
	Blocks          []schedule.PeriodBlock `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	DSLText         string                 `json:"dslText,omitempty" yaml:"dslText,omitempty"`
	RatesPercent    []float64              `json:"ratesPercent" yaml:"ratesPercent"`
}

// Source extracts the schedule compiler input.
func (s Scenario) Source() schedule.Source {
	return schedule.Source{
		Mode:            s.Mode,
		DurationYears:   s.DurationYears,
		StartYm:         s.StartYm,
		MonthlyInvest:   s.MonthlyInvest,
		MonthlyWithdraw: s.MonthlyWithdraw,
		WithdrawStartYm: s.WithdrawStartYm,
		Blocks:          s.Blocks,
		DSLText:         s.DSLText,
	}
}

// Validate reports the values that would make the scenario meaningless to
// simulate, such as negative amounts, missing rates or DSL errors.
func (s Scenario) Validate() []error {
	return validation.ValidateScenario(s.ValidationConfig(true))
}

// ValidationConfig describes the scenario to the validation package.
func (s Scenario) ValidationConfig(active bool) validation.ScenarioConfig {
	return validation.ScenarioConfig{
		Name:            s.Name,
		Active:          active,
		StartYm:         s.StartYm,
		InitialLump:     s.InitialLump,
		DurationYears:   s.DurationYears,
		Mode:            s.Mode,
		MonthlyInvest:   s.MonthlyInvest,
		MonthlyWithdraw: s.MonthlyWithdraw,
		WithdrawStartYm: s.WithdrawStartYm,
		DSLText:         s.DSLText,
		Blocks:          s.Blocks,
		Rates:           s.RatesPercent,
	}
}

// TimelinePoint is the state at the end of one month. Month 0 is the state
// right after the initial deposit.
type TimelinePoint struct {
	MonthIndex int   `json:"monthIndex"`
	Principal  int64 `json:"principal"`
	Profit     int64 `json:"profit"`
	Total      int64 `json:"total"`
}

// YearRow is the snapshot taken at every twelfth month.
type YearRow struct {
	Year               int    `json:"year"`
	EndYm              string `json:"endYm,omitempty"`
	PrincipalCum       int64  `json:"principalCum"`
	PrincipalYear      int64  `json:"principalYear"`
	WithdrawYear       int64  `json:"withdrawYear"`
	ExemptValue        int64  `json:"exemptValue"`
	TaxableValue       int64  `json:"taxableValue"`
	TotalValue         int64  `json:"totalValue"`
	ExemptPrincipalCum int64  `json:"exemptPrincipalCum"`
	CapRemaining       int64  `json:"capRemaining"`
}

// KPI summarizes one run. Nil years mean the event never happened.
type KPI struct {
	CapReachedYear *int  `json:"capReachedYear,omitempty"`
	MaxYear        int   `json:"maxYear"`
	MaxValue       int64 `json:"maxValue"`
	DepletionYear  *int  `json:"depletionYear,omitempty"`
}

// RateRow is the sweep-level result of one rate.
type RateRow struct {
	Rate         float64         `json:"rate"`
	RatePercent  int             `json:"ratePercent"`
	FinalTotal   int64           `json:"finalTotal"`
	FinalExempt  int64           `json:"finalExempt"`
	FinalTaxable int64           `json:"finalTaxable"`
	Principal    int64           `json:"principal"`
	Profit       int64           `json:"profit"`
	Timeline     []TimelinePoint `json:"timeline"`
}

// RateDetail is the year-by-year result of one rate.
type RateDetail struct {
	Rate        float64   `json:"rate"`
	RatePercent int       `json:"ratePercent"`
	KPI         KPI       `json:"kpi"`
	Years       []YearRow `json:"years"`
}

// Summary holds the rate-independent totals of a sweep.
type Summary struct {
	PrincipalTotal  int64 `json:"principalTotal"`
	ExemptPrincipal int64 `json:"exemptPrincipal"`
}

// CalcResult is the outcome of a rate sweep over one scenario.
type CalcResult struct {
	Name    string    `json:"name,omitempty"`
	Summary Summary   `json:"summary"`
	Rows    []RateRow `json:"rows"`
}

// Options tunes a sweep.
type Options struct {
	// Params are the regime constants. Nil runs with finance.DefaultParams.
	Params *finance.Params
	// Parallelism bounds how many rates run at once. Values below 1 run the
	// rates one after another.
	Parallelism int
}

// RegimeParams returns the params a sweep runs with.
func (o Options) RegimeParams() finance.Params {
	if o.Params == nil {
		return finance.DefaultParams()
	}
	return *o.Params
}
