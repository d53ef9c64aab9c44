package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/iwvelando/nisa-forecast/internal/config"
	"github.com/iwvelando/nisa-forecast/internal/store"
	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newScenarioCmd(opts *rootOptions) *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Manage saved scenarios",
	}
	cmd.PersistentFlags().StringVar(&storePath, "store", constants.DefaultStoreFile, "path to the scenario store")

	openStore := func() (*store.Store, error) {
		logger, err := initializeLogger(config.LoggingConfig{}, opts.logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return store.New(storePath, logger), nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved scenarios, most recently updated first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := openStore()
				if err != nil {
					return err
				}
				records, err := s.List()
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tMODE\tUPDATED")
				for _, record := range records {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						record.Scenario.ID,
						record.Scenario.Name,
						record.Scenario.Mode,
						record.UpdatedAt.Format("2006-01-02 15:04:05"),
					)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "show ID",
			Short: "Print a saved scenario in configuration file form",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := openStore()
				if err != nil {
					return err
				}
				record, err := s.Get(args[0])
				if err != nil {
					return err
				}

				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode([]config.Scenario{config.FromScenario(record.Scenario, true)}); err != nil {
					return err
				}
				return enc.Close()
			},
		},
		newScenarioSaveCmd(opts, openStore),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a saved scenario",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := openStore()
				if err != nil {
					return err
				}
				if err := s.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "duplicate ID",
			Short: "Copy a saved scenario under a new id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := openStore()
				if err != nil {
					return err
				}
				record, err := s.Duplicate(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", record.Scenario.ID, record.Scenario.Name)
				return nil
			},
		},
	)
	return cmd
}

func newScenarioSaveCmd(opts *rootOptions, openStore func() (*store.Store, error)) *cobra.Command {
	var (
		scenarioName string
		id           string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a scenario from the configuration file",
		Long:  "Saves the named configuration scenario under a new id, or overwrites the saved scenario given by --id.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
			}

			var found *config.Scenario
			for i := range conf.Scenarios {
				if conf.Scenarios[i].Name == scenarioName {
					found = &conf.Scenarios[i]
					break
				}
			}
			if found == nil {
				return fmt.Errorf("scenario %q not found in %s", scenarioName, opts.configPath)
			}

			s, err := openStore()
			if err != nil {
				return err
			}

			scenario := found.ToScenario()
			var record store.Record
			if id == "" {
				record, err = s.SaveNew(scenario)
			} else {
				record, err = s.Overwrite(id, scenario)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", record.Scenario.ID, record.Scenario.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioName, "scenario", "", "name of the scenario in the configuration file")
	cmd.Flags().StringVar(&id, "id", "", "overwrite the saved scenario with this id")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}
