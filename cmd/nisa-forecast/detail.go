package main

import (
	"fmt"

	"github.com/iwvelando/nisa-forecast/internal/forecast"
	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/output"
	"github.com/spf13/cobra"
)

func newDetailCmd(opts *rootOptions) *cobra.Command {
	var (
		scenarioName string
		rate         float64
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "detail",
		Short: "Show the year-by-year projection of one scenario at one rate",
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

			var scenario *forecast.Scenario
			for _, s := range conf.Scenarios {
				if s.Name == scenarioName {
					converted := s.ToScenario()
					scenario = &converted
					break
				}
			}
			if scenario == nil {
				return fmt.Errorf("scenario %q not found in %s", scenarioName, opts.configPath)
			}

			scenario.RatesPercent = []float64{rate}
			if errs := scenario.Validate(); len(errs) > 0 {
				return fmt.Errorf("scenario %s: %w", scenario.Name, errs[0])
			}

			detail, err := forecast.CalculateDetail(cmd.Context(), logger, *scenario, rate, conf.ForecastOptions())
			if err != nil {
				return fmt.Errorf("failed to compute detail: %w", err)
			}

			w := cmd.OutOrStdout()
			switch format {
			case constants.OutputFormatCSV:
				return output.YearCsvFormat(w, detail)
			case constants.OutputFormatJSON:
				return output.JSONFormat(w, detail)
			default:
				output.DetailPrettyFormat(w, scenario.Name, detail)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&scenarioName, "scenario", "", "name of the scenario in the configuration file")
	cmd.Flags().Float64Var(&rate, "rate", 0, "annual rate as a percentage (5) or fraction (0.05)")
	cmd.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	_ = cmd.MarkFlagRequired("scenario")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}
