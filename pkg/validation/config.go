// Package validation provides scenario and configuration validation utilities.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/datetime"
	"github.com/iwvelando/nisa-forecast/pkg/finance"
	"github.com/iwvelando/nisa-forecast/pkg/schedule"
)

// MaxDurationYears bounds the projection horizon.
const MaxDurationYears = 100

// ScenarioConfig is the subset of a scenario that validation inspects.
type ScenarioConfig struct {
	Name            string
	Active          bool
	StartYm         string
	InitialLump     int64
	DurationYears   float64
	Mode            string
	MonthlyInvest   int64
	MonthlyWithdraw int64
	WithdrawStartYm string
	DSLText         string
	Blocks          []schedule.PeriodBlock
	Rates           []float64
}

// ValidateScenario reports every value the engine should not be given.
// A nil result means the scenario can be calculated.
func ValidateScenario(s ScenarioConfig) []error {
	var errs []error

	if s.InitialLump < 0 {
		errs = append(errs, fmt.Errorf("initial lump must not be negative, got %d", s.InitialLump))
	}
	if s.MonthlyInvest < 0 {
		errs = append(errs, fmt.Errorf("monthly investment must not be negative, got %d", s.MonthlyInvest))
	}
	if s.MonthlyWithdraw < 0 {
		errs = append(errs, fmt.Errorf("monthly withdrawal must not be negative, got %d", s.MonthlyWithdraw))
	}
	if s.DurationYears < 0 || s.DurationYears > MaxDurationYears {
		errs = append(errs, fmt.Errorf("duration must be between 0 and %d years, got %v", MaxDurationYears, s.DurationYears))
	}
	if s.StartYm != "" {
		if _, _, err := datetime.ParseYearMonth(s.StartYm); err != nil {
			errs = append(errs, fmt.Errorf("start month: %w", err))
		}
	}
	if s.WithdrawStartYm != "" {
		if _, _, err := datetime.ParseYearMonth(s.WithdrawStartYm); err != nil {
			errs = append(errs, fmt.Errorf("withdrawal start month: %w", err))
		}
	}

	if err := ValidateRates(s.Rates); err != nil {
		errs = append(errs, err)
	}

	switch s.Mode {
	case "", constants.ModeSimple:
	case constants.ModeBuilder:
		errs = append(errs, ValidateBlocks(s.Blocks)...)
	case constants.ModeDSL:
		if strings.TrimSpace(s.DSLText) != "" {
			_, dslErrs := schedule.ParseDSL(s.DSLText)
			for _, msg := range dslErrs {
				errs = append(errs, fmt.Errorf("dsl %s", msg))
			}
		} else {
			errs = append(errs, ValidateBlocks(s.Blocks)...)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", schedule.ErrUnknownMode, s.Mode))
	}

	return errs
}

// ValidateBlocks applies the checks the DSL parser makes to blocks given
// directly: a positive repeat count and a pattern of periods that each last
// at least one month. Blocks are numbered from 1.
func ValidateBlocks(blocks []schedule.PeriodBlock) []error {
	var errs []error
	for i, block := range blocks {
		if block.RepeatYears <= 0 {
			errs = append(errs, fmt.Errorf("block %d: repeat years must be positive, got %d", i+1, block.RepeatYears))
		}
		if len(block.Pattern) == 0 {
			errs = append(errs, fmt.Errorf("block %d: pattern is empty", i+1))
		}
		for j, period := range block.Pattern {
			if period.Months <= 0 {
				errs = append(errs, fmt.Errorf("block %d period %d: months must be positive, got %d", i+1, j+1, period.Months))
			}
		}
	}
	return errs
}

// ValidateRates checks that the list is non-empty and that every rate lies
// within the accepted percentage range.
func ValidateRates(rates []float64) error {
	if len(rates) == 0 {
		return fmt.Errorf("at least one rate is required")
	}
	for _, rate := range rates {
		percent := finance.NormalizeRate(rate) * constants.PercentageMultiplier
		if percent < constants.RateMinPercent || percent > constants.RateMaxPercent {
			return fmt.Errorf("rate %v is outside %v%%-%v%%", rate, constants.RateMinPercent, constants.RateMaxPercent)
		}
	}
	return nil
}

// ValidateParams checks the regime constants: the cap must not be negative
// and the tax rate must lie between 0 and 1.
func ValidateParams(params finance.Params) error {
	if params.CapLimit < 0 {
		return fmt.Errorf("cap limit must not be negative, got %d", params.CapLimit)
	}
	if params.TaxRate < 0 || params.TaxRate > 1 || math.IsNaN(params.TaxRate) {
		return fmt.Errorf("tax rate must be between 0 and 1, got %v", params.TaxRate)
	}
	return nil
}

// ConfigValidator collects warnings for a whole configuration.
type ConfigValidator struct {
	Scenarios []ScenarioConfig
}

// ValidateAll returns warnings that do not block calculation.
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	active := 0
	for _, scenario := range cv.Scenarios {
		if !scenario.Active {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' is inactive and will be skipped", scenario.Name))
			continue
		}
		active++

		if len(scenario.Rates) == 0 {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' has no rates and produces no rows", scenario.Name))
		}
		if scenario.MonthlyWithdraw > 0 && scenario.WithdrawStartYm == "" {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' sets a monthly withdrawal without a withdrawal start month", scenario.Name))
		}
		if scenario.Mode != "" && scenario.Mode != constants.ModeSimple && (scenario.MonthlyInvest != 0 || scenario.MonthlyWithdraw != 0) {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' sets simple-mode amounts that %s mode ignores", scenario.Name, scenario.Mode))
		}
	}

	if len(cv.Scenarios) > 0 && active == 0 {
		warnings = append(warnings, "No active scenarios")
	}

	return warnings
}
