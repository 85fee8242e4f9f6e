package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect stored validation runs and insights",
	}
	cmd.AddCommand(newReportListCommand(ctx))
	cmd.AddCommand(newReportShowCommand(ctx))
	cmd.AddCommand(newReportInsightsCommand(ctx))
	return cmd
}

func newReportListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent validation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListValidations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No validation runs recorded.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.VideoID,
					run.Mode,
					passFail(run.Passed),
					strconv.Itoa(run.IssueCount),
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Video", "Mode", "Status", "Issues", "When"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
			} else {
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit runs as JSON")
	return cmd
}

func newReportShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one validation run in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetValidation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, run)
		},
	}
	return cmd
}

func newReportInsightsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights <video-id>",
		Short: "List stored insights for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			insights, err := store.ListInsights(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, insights)
		},
	}
	return cmd
}
