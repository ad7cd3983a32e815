package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"matchtracker/internal/config"
	"matchtracker/internal/history"
	"matchtracker/internal/report"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived analysis runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryDeleteCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var videoKey string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), videoKey, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.VideoKey,
						string(run.Mode),
						strconv.Itoa(run.FrameCount),
						strconv.Itoa(run.MatchCount),
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Video", "Mode", "Frames", "Matches", "Started", "Took"},
					rows,
					3, 4, 6,
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&videoKey, "video", "", "Only list runs of this video key")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the matches recorded by a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				run, err := store.FindRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				records, err := store.RunRecords(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Video:    %s\n", run.VideoKey)
				fmt.Fprintf(out, "Source:   %s\n", run.SourcePath)
				fmt.Fprintf(out, "Mode:     %s\n", run.Mode)
				fmt.Fprintf(out, "Interval: %gs\n", run.FrameInterval)
				fmt.Fprintf(out, "Matches:  %d\n", run.MatchCount)
				fmt.Fprintf(out, "Output:   %s\n", run.OutputPath)
				if len(records) > 0 {
					fmt.Fprintln(out, renderRecords(records))
				}
				if target := strings.TrimSpace(exportPath); target != "" {
					expanded, err := config.ExpandPath(target)
					if err != nil {
						return err
					}
					if err := report.WriteRecords(expanded, records); err != nil {
						return fmt.Errorf("export records: %w", err)
					}
					fmt.Fprintf(out, "Exported %d records to %s\n", len(records), expanded)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the run's records to a CSV file")
	return cmd
}

func newHistoryDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				run, err := store.FindRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := store.DeleteRun(cmd.Context(), run.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", run.ID)
				return nil
			})
		},
	}
}

func withHistory(ctx *commandContext, cmd *cobra.Command, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled (set history.enabled = true in config.toml)")
		return nil
	}
	store, err := history.Open(cmd.Context(), cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
