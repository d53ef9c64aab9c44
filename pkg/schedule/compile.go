package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/nisa-forecast/pkg/constants"
)

// ErrUnknownMode is returned by Compile for modes outside simple, builder and dsl.
var ErrUnknownMode = errors.New("unknown input mode")

// DSLError carries every per-line message of a DSL text that failed to
// parse. Any message blocks calculation.
type DSLError struct {
	Messages []string
}

func (e *DSLError) Error() string {
	return fmt.Sprintf("dsl has %d error(s): %s", len(e.Messages), strings.Join(e.Messages, "; "))
}

// Source is everything Compile needs from a scenario.
type Source struct {
	Mode            string
	DurationYears   float64
	StartYm         string
	MonthlyInvest   int64
	MonthlyWithdraw int64
	WithdrawStartYm string
	Blocks          []PeriodBlock
	DSLText         string
}

// Compiled is a schedule ready for simulation. Flows is shared read-only
// between runs.
type Compiled struct {
	Periods        []Period
	DurationMonths int
	Flows          []int64
}

// Compile resolves the mode of src into the monthly flow sequence. An empty
// mode reads as simple. In dsl mode a non-blank DSLText takes precedence
// over Blocks and any parse error fails the compile with a *DSLError.
func Compile(src Source) (Compiled, error) {
	mode := src.Mode
	if mode == "" {
		mode = constants.ModeSimple
	}

	opts := Options{DurationYears: src.DurationYears}
	switch mode {
	case constants.ModeSimple:
		opts.Simple = &SimpleOptions{
			MonthlyInvest:   src.MonthlyInvest,
			MonthlyWithdraw: src.MonthlyWithdraw,
			StartYm:         src.StartYm,
			WithdrawStartYm: src.WithdrawStartYm,
		}
	case constants.ModeBuilder:
		opts.Blocks = src.Blocks
	case constants.ModeDSL:
		opts.Blocks = src.Blocks
		if strings.TrimSpace(src.DSLText) != "" {
			blocks, errs := ParseDSL(src.DSLText)
			if len(errs) > 0 {
				return Compiled{}, &DSLError{Messages: errs}
			}
			opts.Blocks = blocks
		}
	default:
		return Compiled{}, fmt.Errorf("%w: %q", ErrUnknownMode, src.Mode)
	}

	res := Normalize(mode, opts)
	return Compiled{
		Periods:        res.Periods,
		DurationMonths: res.DurationMonths,
		Flows:          MonthlySequence(res.Periods, res.DurationMonths),
	}, nil
}
