package main

import (
	"fmt"
	"os"

	"github.com/iwvelando/nisa-forecast/pkg/schedule"
	"github.com/spf13/cobra"
)

func newDSLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dsl",
		Short: "Check or reformat schedule DSL files",
	}
	cmd.AddCommand(newDSLCheckCmd(), newDSLFmtCmd())
	return cmd
}

func readDSL(path string) ([]schedule.PeriodBlock, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	blocks, errs := schedule.ParseDSL(string(data))
	return blocks, errs, nil
}

func newDSLCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Report DSL errors with their line numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, errs, err := readDSL(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, msg := range errs {
				fmt.Fprintf(w, "%s: %s\n", args[0], msg)
			}
			if len(errs) > 0 {
				return &schedule.DSLError{Messages: errs}
			}

			months := schedule.BlockMonths(blocks)
			fmt.Fprintf(w, "%s: %d blocks, %d months\n", args[0], len(blocks), months)
			return nil
		},
	}
}

func newDSLFmtCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt FILE",
		Short: "Print the canonical form of a DSL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, errs, err := readDSL(args[0])
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				return &schedule.DSLError{Messages: errs}
			}

			canonical := schedule.FormatDSL(blocks) + "\n"
			if !write {
				_, err := fmt.Fprint(cmd.OutOrStdout(), canonical)
				return err
			}

			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			return os.WriteFile(args[0], []byte(canonical), info.Mode().Perm())
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	return cmd
}
