package config

import (
	"reflect"
	"testing"

	"github.com/iwvelando/nisa-forecast/internal/forecast"
)

func TestRateList(t *testing.T) {
	tests := []struct {
		name     string
		rates    any
		expected []float64
	}{
		{"Missing", nil, []float64{}},
		{"Single number", 5, []float64{5}},
		{"Free-form string", "3, 5 7", []float64{3, 5, 7}},
		{"Ideographic comma", "3、4", []float64{3, 4}},
		{"List of percents", []any{3, 5.5}, []float64{3, 5.5}},
		{"List of fractions", []any{0.04, 0.06}, []float64{0.04, 0.06}},
		{"Float slice", []float64{2, 0.5}, []float64{2, 0.5}},
		{"Percents of 100 and above", []any{150, 100}, []float64{150, 100}},
		{"Unusable value", map[string]int{"a": 1}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scenario{Rates: tt.rates}.RateList()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("RateList() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFromScenario(t *testing.T) {
	original := forecast.Scenario{
		Name:          "round trip",
		StartYm:       "2025-01",
		InitialLump:   500000,
		DurationYears: 15,
		Mode:          "simple",
		MonthlyInvest: 40000,
		RatesPercent:  []float64{3, 0.05},
	}

	back := FromScenario(original, true).ToScenario()
	if !reflect.DeepEqual(back, original) {
		t.Errorf("FromScenario() round trip = %+v, expected %+v", back, original)
	}
}
