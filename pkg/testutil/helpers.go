// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/nisa-forecast/internal/forecast"
)

// FindScenario finds a result by scenario name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindScenario(results []forecast.CalcResult, name string) *forecast.CalcResult {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FindRate returns the first row whose whole percentage equals percent, or
// nil if the sweep did not include it.
func FindRate(rows []forecast.RateRow, percent int) *forecast.RateRow {
	for i := range rows {
		if rows[i].RatePercent == percent {
			return &rows[i]
		}
	}
	return nil
}
