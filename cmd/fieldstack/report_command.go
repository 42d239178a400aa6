package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect recorded runs",
	}
	cmd.AddCommand(newReportRunsCommand(ctx))
	cmd.AddCommand(newReportWarningsCommand(ctx))
	return cmd
}

func newReportRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent stage runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openReport(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("report persistence is disabled; enable it under [report] in the configuration")
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				finished := "running"
				if run.FinishedAt != nil {
					finished = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
				}
				rows = append(rows, []string{
					run.ID,
					run.Stage,
					run.StartedAt.Format(time.RFC3339),
					finished,
					fmt.Sprintf("%d", run.Counters.FieldsProcessed),
					fmt.Sprintf("%d", run.Counters.RegionsUncorrected),
					fmt.Sprintf("%d", run.Warnings),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Stage", "Started", "Duration", "Fields", "Uncorrected", "Warnings"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func newReportWarningsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "warnings <run-id>",
		Short: "List the unresolved dropouts of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openReport(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("report persistence is disabled; enable it under [report] in the configuration")
			}
			defer store.Close()

			warnings, err := store.RunWarnings(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(warnings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No warnings recorded")
				return nil
			}

			rows := make([][]string, 0, len(warnings))
			for _, w := range warnings {
				rows = append(rows, []string{
					fmt.Sprintf("%d", w.FieldID),
					w.Channel,
					fmt.Sprintf("%d:%d-%d", w.Line, w.Start, w.End),
					w.Reason,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Channel", "Region", "Reason"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 200, "Maximum number of warnings to show")
	return cmd
}
