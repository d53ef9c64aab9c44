package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/nisa-forecast/internal/forecast"
	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/schedule"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example config",
			configPath: "../../test/test_config.yaml",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "warn" || config.Logging.Format != "json" {
		t.Errorf("Logging = %+v, expected warn/json", config.Logging)
	}
	if config.Output.Format != constants.OutputFormatPretty {
		t.Errorf("Output format = %s, expected pretty", config.Output.Format)
	}
	if config.Engine.Parallelism != 2 {
		t.Errorf("Parallelism = %d, expected 2", config.Engine.Parallelism)
	}

	expectedScenarios := []string{"steady saver", "accumulate then draw", "bonus months", "retired plan"}
	if len(config.Scenarios) != len(expectedScenarios) {
		t.Fatalf("Expected %d scenarios, got %d", len(expectedScenarios), len(config.Scenarios))
	}
	for i, expectedName := range expectedScenarios {
		if config.Scenarios[i].Name != expectedName {
			t.Errorf("Expected scenario name %s, got %s", expectedName, config.Scenarios[i].Name)
		}
	}

	builder := config.Scenarios[1]
	expectedBlocks := []schedule.PeriodBlock{
		{Name: "accumulate", RepeatYears: 25, Pattern: []schedule.Period{{Months: 12, Flow: 50000}}},
		{Name: "draw", RepeatYears: 15, Pattern: []schedule.Period{{Months: 12, Flow: -150000}}},
	}
	if !reflect.DeepEqual(builder.Blocks, expectedBlocks) {
		t.Errorf("Blocks = %+v, expected %+v", builder.Blocks, expectedBlocks)
	}
	if builder.InitialLump != 1000000 {
		t.Errorf("InitialLump = %d, expected 1000000", builder.InitialLump)
	}

	if !strings.Contains(config.Scenarios[2].DSLText, "late: (12, 100000) x10") {
		t.Errorf("DSLText = %q, expected the late block", config.Scenarios[2].DSLText)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	yaml := `
scenarios:
  - name: inline
    active: true
    durationYears: 5
    monthlyInvest: 1000
    rates: 5
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if len(config.Scenarios) != 1 || config.Scenarios[0].Name != "inline" {
		t.Fatalf("Scenarios = %+v, expected one inline scenario", config.Scenarios)
	}
	if got := config.Scenarios[0].RateList(); !reflect.DeepEqual(got, []float64{5}) {
		t.Errorf("RateList() = %v, expected [5]", got)
	}
}

func TestOutOfRangeConfigRatesFailValidation(t *testing.T) {
	yaml := `
scenarios:
  - name: too fast
    active: true
    startYm: 2025-01
    durationYears: 5
    monthlyInvest: 1000
    rates: [150, 100]
  - name: edge of range
    active: true
    startYm: 2025-01
    durationYears: 5
    monthlyInvest: 1000
    rates: [50, 1]
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	scenarios := config.ToScenarios()
	if len(scenarios) != 2 {
		t.Fatalf("ToScenarios() returned %d scenarios, expected 2", len(scenarios))
	}

	tooFast := scenarios[0]
	if !reflect.DeepEqual(tooFast.RatesPercent, []float64{150, 100}) {
		t.Errorf("RatesPercent = %v, expected the rates as written", tooFast.RatesPercent)
	}
	if errs := tooFast.Validate(); len(errs) == 0 {
		t.Error("Validate() accepted rates of 150% and 100%")
	}

	edge := scenarios[1]
	if errs := edge.Validate(); len(errs) != 0 {
		t.Fatalf("Validate() = %v, expected 50%% and 1%% to be accepted", errs)
	}
	result, err := forecast.Calculate(context.Background(), nil, edge, forecast.Options{})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if len(result.Rows) != 2 || result.Rows[0].RatePercent != 50 || result.Rows[1].RatePercent != 1 {
		t.Errorf("Calculate() rows = %+v, expected 50%% then 1%%", result.Rows)
	}
}

func TestLoadConfigurationEngineZeros(t *testing.T) {
	yaml := `
engine:
  capLimit: 0
  taxRate: 0
scenarios: []
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Engine.CapLimit == nil || config.Engine.TaxRate == nil {
		t.Fatalf("Engine = %+v, expected explicit zeros to be kept", config.Engine)
	}
	params := config.ForecastOptions().RegimeParams()
	if params.CapLimit != 0 || params.TaxRate != 0 {
		t.Errorf("params = %+v, expected cap 0 and tax 0", params)
	}
	if err := config.Engine.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	config.Engine.TaxRate = float64Ptr(-0.1)
	if err := config.Engine.Validate(); err == nil {
		t.Error("Validate() accepted a negative tax rate")
	}
}

func TestLoadConfigurationFromReaderInvalid(t *testing.T) {
	if _, err := LoadConfigurationFromReader(strings.NewReader("scenarios: [")); err == nil {
		t.Error("LoadConfigurationFromReader() expected error for malformed YAML")
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: pretty\nscenarios: []\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("NISA_OUTPUT_FORMAT", "csv")

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Format != constants.OutputFormatCSV {
		t.Errorf("Output format = %s, expected the environment override csv", config.Output.Format)
	}
}

func TestActiveScenarios(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	active := config.ActiveScenarios()
	if len(active) != 3 {
		t.Fatalf("ActiveScenarios() returned %d scenarios, expected 3", len(active))
	}
	for _, s := range active {
		if s.Name == "retired plan" {
			t.Error("inactive scenario returned by ActiveScenarios()")
		}
	}
	if len(config.ToScenarios()) != 3 {
		t.Error("ToScenarios() should convert only the active scenarios")
	}
}

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

func TestForecastOptions(t *testing.T) {
	tests := []struct {
		name        string
		engine      EngineConfig
		wantCap     int64
		wantTax     float64
		wantWorkers int
	}{
		{"Defaults", EngineConfig{}, constants.CapLimit, constants.TaxRate, 0},
		{"Overrides", EngineConfig{CapLimit: int64Ptr(12_000_000), TaxRate: float64Ptr(0.1), Parallelism: 4}, 12_000_000, 0.1, 4},
		{"Explicit zeros", EngineConfig{CapLimit: int64Ptr(0), TaxRate: float64Ptr(0)}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Configuration{Engine: tt.engine}
			opts := c.ForecastOptions()
			if opts.Params.CapLimit != tt.wantCap || opts.Params.TaxRate != tt.wantTax || opts.Parallelism != tt.wantWorkers {
				t.Errorf("ForecastOptions() = %+v, expected cap %d tax %v parallelism %d", opts, tt.wantCap, tt.wantTax, tt.wantWorkers)
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	warnings := config.ValidateConfiguration()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "retired plan") {
		t.Errorf("ValidateConfiguration() = %v, expected only the inactive scenario warning", warnings)
	}

	config.Engine.CapLimit = int64Ptr(12_000_000)
	config.Engine.Parallelism = -1
	warnings = config.ValidateConfiguration()
	if len(warnings) != 3 {
		t.Errorf("ValidateConfiguration() = %v, expected 3 warnings", warnings)
	}
}

func TestToScenarioAt(t *testing.T) {
	now := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	s := Scenario{
		Name:          "no start",
		DurationYears: 10,
		Mode:          " DSL ",
		DSLText:       "(12, 1000) x10",
		Rates:         []any{3, "5, 7", 0.02, "junk"},
	}

	scenario := s.ToScenarioAt(now)
	if scenario.StartYm != "2026-07" {
		t.Errorf("StartYm = %s, expected the current month 2026-07", scenario.StartYm)
	}
	if scenario.Mode != constants.ModeDSL {
		t.Errorf("Mode = %q, expected dsl", scenario.Mode)
	}
	if !reflect.DeepEqual(scenario.RatesPercent, []float64{3, 5, 7, 0.02}) {
		t.Errorf("RatesPercent = %v, expected [3 5 7 0.02]", scenario.RatesPercent)
	}
}
