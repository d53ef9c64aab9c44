package forecast

import (
	"context"
	"fmt"

	"github.com/iwvelando/nisa-forecast/pkg/schedule"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Calculate compiles the scenario schedule once and simulates it for every
// requested rate in the given order. The summary comes from the first rate;
// contributions do not depend on the rate. Errors come only from the
// schedule (DSL errors, unknown mode) or from ctx.
func Calculate(ctx context.Context, logger *zap.Logger, scenario Scenario, opts Options) (CalcResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	result := CalcResult{Name: scenario.Name, Rows: []RateRow{}}

	compiled, err := schedule.Compile(scenario.Source())
	if err != nil {
		return result, fmt.Errorf("failed to compile schedule for scenario %s: %w", scenario.Name, err)
	}

	sims, err := sweep(ctx, compiled, scenario, scenario.RatesPercent, opts)
	if err != nil {
		return result, err
	}

	for _, sim := range sims {
		result.Rows = append(result.Rows, sim.Row())
	}
	if len(sims) > 0 {
		result.Summary = Summary{
			PrincipalTotal:  sims[0].Principal,
			ExemptPrincipal: sims[0].CapUsed,
		}
	}

	logger.Debug(fmt.Sprintf("computed %d rates for scenario %s", len(sims), scenario.Name),
		zap.String("op", "forecast.Calculate"),
		zap.String("mode", scenario.Mode),
		zap.Int("months", compiled.DurationMonths),
	)

	return result, nil
}

// CalculateDetail simulates the scenario at a single rate and returns its
// year rows and KPIs.
func CalculateDetail(ctx context.Context, logger *zap.Logger, scenario Scenario, rate float64, opts Options) (RateDetail, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	compiled, err := schedule.Compile(scenario.Source())
	if err != nil {
		return RateDetail{}, fmt.Errorf("failed to compile schedule for scenario %s: %w", scenario.Name, err)
	}

	sims, err := sweep(ctx, compiled, scenario, []float64{rate}, opts)
	if err != nil {
		return RateDetail{}, err
	}

	detail := sims[0].Detail()
	logger.Debug("computed rate detail",
		zap.String("op", "forecast.CalculateDetail"),
		zap.String("scenario", scenario.Name),
		zap.Int("ratePercent", detail.RatePercent),
		zap.Int("years", len(detail.Years)),
	)
	return detail, nil
}

// CalculateAll runs Calculate for each scenario in order.
func CalculateAll(ctx context.Context, logger *zap.Logger, scenarios []Scenario, opts Options) ([]CalcResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]CalcResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := Calculate(ctx, logger, scenario, opts)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// sweep runs one simulation per rate. Runs share the read-only flow slice
// and write to distinct result slots, so they need no coordination.
func sweep(ctx context.Context, compiled schedule.Compiled, scenario Scenario, rates []float64, opts Options) ([]Simulation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := opts.RegimeParams()
	sims := make([]Simulation, len(rates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Parallelism))

	for i, rate := range rates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sims[i] = Simulate(compiled.Flows, Run{
				StartYm:     scenario.StartYm,
				InitialLump: scenario.InitialLump,
				AnnualRate:  rate,
			}, params)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sims, nil
}
