// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/nisa-forecast/internal/forecast"
	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/finance"
	"github.com/iwvelando/nisa-forecast/pkg/schedule"
	"github.com/iwvelando/nisa-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for nisa-forecast.
type Configuration struct {
	Engine    EngineConfig  `yaml:"engine,omitempty"`
	Scenarios []Scenario    `yaml:"scenarios"`
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// EngineConfig overrides the regime constants and sweep parallelism. An
// absent cap or tax rate keeps the default; an explicit 0 is honoured.
type EngineConfig struct {
	CapLimit    *int64   `yaml:"capLimit,omitempty"`
	TaxRate     *float64 `yaml:"taxRate,omitempty"`
	Parallelism int      `yaml:"parallelism,omitempty"`
}

// Scenario is one projection as written in the config file.
type Scenario struct {
	Name            string                 `yaml:"name"`
	Active          bool                   `yaml:"active"`
	StartYm         string                 `yaml:"startYm,omitempty"`
	InitialLump     int64                  `yaml:"initialLump,omitempty"`
	DurationYears   float64                `yaml:"durationYears"`
	Mode            string                 `yaml:"mode,omitempty"`
	MonthlyInvest   int64                  `yaml:"monthlyInvest,omitempty"`
	MonthlyWithdraw int64                  `yaml:"monthlyWithdraw,omitempty"`
	WithdrawStartYm string                 `yaml:"withdrawStartYm,omitempty"`
	Blocks          []schedule.PeriodBlock `yaml:"blocks,omitempty"`
	DSLText         string                 `yaml:"dslText,omitempty"`
	// Rates is either a list of numbers or a free-form string such as "3, 5 7".
	Rates any `yaml:"rates"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// ActiveScenarios returns the scenarios marked active, in file order.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range c.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// ForecastOptions converts the engine section into sweep options.
func (c *Configuration) ForecastOptions() forecast.Options {
	return c.Engine.ForecastOptions()
}

// Params returns the regime constants with the overrides applied.
func (e EngineConfig) Params() finance.Params {
	params := finance.DefaultParams()
	if e.CapLimit != nil {
		params.CapLimit = *e.CapLimit
	}
	if e.TaxRate != nil {
		params.TaxRate = *e.TaxRate
	}
	return params
}

// Validate rejects regime constants the engine cannot run with.
func (e EngineConfig) Validate() error {
	if err := validation.ValidateParams(e.Params()); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// ForecastOptions converts the engine parameters into sweep options.
func (e EngineConfig) ForecastOptions() forecast.Options {
	params := e.Params()
	return forecast.Options{
		Params:      &params,
		Parallelism: e.Parallelism,
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Engine.CapLimit != nil && *c.Engine.CapLimit != constants.CapLimit {
		warnings = append(warnings, fmt.Sprintf("Engine cap limit overridden to %d", *c.Engine.CapLimit))
	}
	if c.Engine.TaxRate != nil && *c.Engine.TaxRate != constants.TaxRate {
		warnings = append(warnings, fmt.Sprintf("Engine tax rate overridden to %v", *c.Engine.TaxRate))
	}
	if c.Engine.Parallelism < 0 {
		warnings = append(warnings, fmt.Sprintf("Engine parallelism %d is negative and runs sequentially", c.Engine.Parallelism))
	}

	validator := validation.ConfigValidator{}
	for _, scenario := range c.Scenarios {
		validator.Scenarios = append(validator.Scenarios, scenario.ToScenario().ValidationConfig(scenario.Active))
	}
	return append(warnings, validator.ValidateAll()...)
}
