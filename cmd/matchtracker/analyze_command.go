package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"matchtracker/internal/match"
	"matchtracker/internal/pipeline"
)

type runFlags struct {
	refresh    bool
	noProgress bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "Discard cached frames and screens for this video first")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false, "Disable progress bars")
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var withOCR bool

	cmd := &cobra.Command{
		Use:   "analyze <video>",
		Short: "Detect matches and write one result row per match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if withOCR {
				cfg.OCR.Enabled = true
			}
			res, err := runPipeline(cmd, ctx, flags, args[0], pipeline.ModeAnalyze)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printRunSummary(out, res)
			if len(res.Records) > 0 {
				fmt.Fprintln(out, renderRecords(res.Records))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&withOCR, "with-ocr", false, "Read player and unit names (overrides ocr.enabled)")
	return cmd
}

func newTimestampsCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "timestamps <video>",
		Short: "Write the start time of every match without reading names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(cmd, ctx, flags, args[0], pipeline.ModeTimestamps)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printRunSummary(out, res)
			if len(res.Timestamps) > 0 {
				rows := make([][]string, 0, len(res.Timestamps))
				for _, ts := range res.Timestamps {
					rows = append(rows, []string{strconv.Itoa(ts.MatchNumber), ts.StartTime})
				}
				fmt.Fprintln(out, renderTable([]string{"#", "Start"}, rows, 0))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, flags runFlags, input string, mode pipeline.Mode) (pipeline.Result, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return pipeline.Result{}, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("init logger: %w", err)
	}
	progress := pipeline.TerminalProgress(cmd.ErrOrStderr())
	if flags.noProgress {
		progress = pipeline.NoProgress
	}
	p := pipeline.New(cfg, logger,
		pipeline.WithProgress(progress),
		pipeline.WithRefresh(flags.refresh),
	)
	return p.Run(cmd.Context(), input, mode)
}

func printRunSummary(out io.Writer, res pipeline.Result) {
	fmt.Fprintf(out, "Video:    %s\n", res.VideoKey)
	fmt.Fprintf(out, "Run:      %s\n", res.RunID)
	fmt.Fprintf(out, "Frames:   %d (cached: %s)\n", res.Frames, yesNo(res.FramesCached))
	fmt.Fprintf(out, "Screens:  cached: %s\n", yesNo(res.ScreensCached))
	fmt.Fprintf(out, "Matches:  %d\n", res.Matches)
	fmt.Fprintf(out, "Output:   %s\n", res.OutputPath)
	fmt.Fprintf(out, "Elapsed:  %s\n", res.Elapsed.Round(time.Millisecond))
}

func renderRecords(records []match.Record) string {
	headers := []string{"#", "Start", "P1", "P2", "P3", "P4", "Units", "Result"}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			rec.StartTime,
			orUnknown(rec.Player1Name),
			orUnknown(rec.Player2Name),
			orUnknown(rec.Player3Name),
			orUnknown(rec.Player4Name),
			fmt.Sprintf("%s / %s / %s / %s", orUnknown(rec.Player1Unit), orUnknown(rec.Player2Unit), orUnknown(rec.Player3Unit), orUnknown(rec.Player4Unit)),
			string(rec.Player1Result),
		})
	}
	return renderTable(headers, rows, 0)
}

func orUnknown(value string) string {
	if value == "" {
		return "?"
	}
	return value
}
