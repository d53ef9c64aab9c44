package schedule

import (
	"math"

	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/datetime"
)

// SimpleOptions carries the fields of the simple input mode.
type SimpleOptions struct {
	MonthlyInvest   int64
	MonthlyWithdraw int64
	StartYm         string
	WithdrawStartYm string
}

// Options selects the mode-specific input for Normalize.
type Options struct {
	DurationYears float64
	Blocks        []PeriodBlock
	Simple        *SimpleOptions
}

// Result is the canonical period list and its length in months.
type Result struct {
	Periods        []Period
	DurationMonths int
}

// DurationMonths converts a duration in years to whole months, truncating
// toward zero and clamping at zero.
func DurationMonths(durationYears float64) int {
	months := math.Trunc(durationYears * constants.MonthsPerYear)
	if math.IsNaN(months) || months <= 0 {
		return 0
	}
	return int(months)
}

// Normalize reconciles the input of one mode into periods covering exactly
// the scenario duration. Modes other than simple, builder and dsl produce a
// zero-flow schedule; Compile rejects them before they get here.
func Normalize(mode string, opts Options) Result {
	durationMonths := DurationMonths(opts.DurationYears)
	if durationMonths == 0 {
		return Result{Periods: []Period{}, DurationMonths: 0}
	}

	var periods []Period
	switch mode {
	case constants.ModeSimple:
		if opts.Simple != nil {
			periods = SimplePeriods(*opts.Simple, durationMonths)
		}
	case constants.ModeBuilder, constants.ModeDSL:
		periods = Flatten(opts.Blocks, durationMonths)
	}

	return Result{
		Periods:        ApplyDuration(periods, durationMonths),
		DurationMonths: durationMonths,
	}
}

// SimplePeriods builds the simple-mode schedule: a constant contribution for
// the whole duration plus a constant withdrawal from the withdrawal start
// month onward, summed month by month into coalesced periods.
func SimplePeriods(opts SimpleOptions, durationMonths int) []Period {
	var invest, withdraw []Period

	if opts.MonthlyInvest > 0 {
		invest = append(invest, Period{Months: durationMonths, Flow: opts.MonthlyInvest})
	}

	if opts.MonthlyWithdraw > 0 && opts.WithdrawStartYm != "" {
		offset := max(0, datetime.MonthsBetween(opts.StartYm, opts.WithdrawStartYm))
		if offset < durationMonths {
			if offset > 0 {
				withdraw = append(withdraw, Period{Months: offset, Flow: 0})
			}
			withdraw = append(withdraw, Period{Months: durationMonths - offset, Flow: -opts.MonthlyWithdraw})
		}
	}

	return mergeStreams(durationMonths, invest, withdraw)
}

func mergeStreams(durationMonths int, streams ...[]Period) []Period {
	monthly := make([]int64, durationMonths)
	for _, stream := range streams {
		index := 0
		for _, period := range stream {
			for i := 0; i < period.Months && index < durationMonths; i++ {
				monthly[index] += period.Flow
				index++
			}
		}
	}

	var result []Period
	for _, flow := range monthly {
		if n := len(result); n > 0 && result[n-1].Flow == flow {
			result[n-1].Months++
			continue
		}
		result = append(result, Period{Months: 1, Flow: flow})
	}
	return result
}
