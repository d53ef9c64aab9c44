package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/iwvelando/nisa-forecast/internal/config"
	"github.com/iwvelando/nisa-forecast/internal/forecast"
	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/output"
	"github.com/iwvelando/nisa-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCalculateCmd(opts *rootOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Run the rate sweep for every active scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := loadConfigAndLogger(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			format, err := resolveOutputFormat(conf, outputFormat)
			if err != nil {
				return err
			}

			scenarios, err := prepareScenarios(conf, logger)
			if err != nil {
				return err
			}

			results, err := forecast.CalculateAll(cmd.Context(), logger, scenarios, conf.ForecastOptions())
			if err != nil {
				return fmt.Errorf("failed to compute forecast: %w", err)
			}

			return writeResults(cmd.OutOrStdout(), format, results)
		},
	}

	cmd.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	return cmd
}

// resolveOutputFormat applies the CLI override over the configured format.
func resolveOutputFormat(conf *config.Configuration, override string) (string, error) {
	format := conf.Output.Format
	if override != "" {
		format = override
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

// prepareScenarios logs configuration warnings and converts the active
// scenarios, failing if any of them is invalid.
func prepareScenarios(conf *config.Configuration, logger *zap.Logger) ([]forecast.Scenario, error) {
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	scenarios := conf.ToScenarios()
	var errs []error
	for _, scenario := range scenarios {
		for _, err := range scenario.Validate() {
			errs = append(errs, fmt.Errorf("scenario %s: %w", scenario.Name, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return scenarios, nil
}

func writeResults(w io.Writer, format string, results []forecast.CalcResult) error {
	switch format {
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, results)
	default:
		output.PrettyFormat(w, results)
		return nil
	}
}
