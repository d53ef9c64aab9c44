package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/nisa-forecast/internal/forecast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []forecast.CalcResult {
	return []forecast.CalcResult{
		{
			Name:    "Test Scenario",
			Summary: forecast.Summary{PrincipalTotal: 360000, ExemptPrincipal: 360000},
			Rows: []forecast.RateRow{
				{Rate: 0.05, RatePercent: 5, FinalTotal: 369700, FinalExempt: 369700, Principal: 360000, Profit: 9700},
				{Rate: 0, RatePercent: 0, FinalTotal: 360000, FinalExempt: 360000, Principal: 360000},
			},
		},
		{
			Name: "Second",
			Rows: []forecast.RateRow{
				{Rate: 0.03, RatePercent: 3, FinalTotal: 1000, FinalExempt: 600, FinalTaxable: 400, Principal: 1000},
			},
		},
	}
}

func sampleDetail() forecast.RateDetail {
	capYear := 2
	return forecast.RateDetail{
		Rate:        0.07,
		RatePercent: 7,
		KPI:         forecast.KPI{CapReachedYear: &capYear, MaxYear: 2, MaxValue: 2500000},
		Years: []forecast.YearRow{
			{Year: 1, EndYm: "2025-12", PrincipalCum: 1200000, PrincipalYear: 1200000, ExemptValue: 1240000, TotalValue: 1240000, ExemptPrincipalCum: 1200000, CapRemaining: 800000},
			{Year: 2, EndYm: "2026-12", PrincipalCum: 2400000, PrincipalYear: 1200000, ExemptValue: 2100000, TaxableValue: 400000, TotalValue: 2500000, ExemptPrincipalCum: 2000000, CapRemaining: 0},
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, sampleResults())
	out := buf.String()

	assert.Contains(t, out, "--- Results for scenario Test Scenario ---")
	assert.Contains(t, out, "--- Results for scenario Second ---")
	assert.Contains(t, out, "Principal: 360,000円 (NISA 360,000円)")
	assert.Contains(t, out, "5.00%")
	assert.Contains(t, out, "369,700円")
	assert.Contains(t, out, "9,700円")
	assert.False(t, strings.HasSuffix(out, "\n\n"), "no blank line after the last scenario")
}

func TestDetailPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	DetailPrettyFormat(&buf, "base", sampleDetail())
	out := buf.String()

	assert.Contains(t, out, "--- Detail for scenario base at 7.00% ---")
	assert.Contains(t, out, "Cap reached: year 2")
	assert.Contains(t, out, "Peak: year 2, 2,500,000円")
	assert.Contains(t, out, "Depleted: never")
	assert.Contains(t, out, "2026-12")
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CsvFormat(&buf, sampleResults()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "scenario,rate,finalTotal,finalExempt,finalTaxable,principal,profit", lines[0])
	assert.Equal(t, "Test Scenario,5,369700,369700,0,360000,9700", lines[1])
	assert.Equal(t, "Test Scenario,0,360000,360000,0,360000,0", lines[2])
	assert.Equal(t, "Second,3,1000,600,400,1000,0", lines[3])
}

func TestYearCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YearCsvFormat(&buf, sampleDetail()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "year,principalCum,principalYear,withdrawYear,nisaValue,taxableValue,totalValue,nisaPrincipalCum,nisaRoomLeft", lines[0])
	assert.Equal(t, "1,1200000,1200000,0,1240000,0,1240000,1200000,800000", lines[1])
	assert.Equal(t, "2,2400000,1200000,0,2100000,400000,2500000,2000000,0", lines[2])
}

func TestYearCsvFilename(t *testing.T) {
	assert.Equal(t, "nisa-7percent.csv", YearCsvFilename(sampleDetail()))
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONFormat(&buf, sampleDetail()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(7), decoded["ratePercent"])
	kpi, ok := decoded["kpi"].(map[string]any)
	require.True(t, ok, "kpi should be an object")
	assert.Equal(t, float64(2), kpi["capReachedYear"])
	assert.Nil(t, kpi["depletionYear"])
}
