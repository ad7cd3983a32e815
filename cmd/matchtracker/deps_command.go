package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"matchtracker/internal/deps"
	"matchtracker/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools, templates, and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := preflight.CheckSystemDeps(cfg)
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, []string{s.Name, s.Command, availability(s.Available, s.Optional), s.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Tool", "Command", "Status", "Detail"}, rows))

			results := preflight.RunAll(cmd.Context(), cfg)
			rows = rows[:0]
			for _, r := range results {
				rows = append(rows, []string{r.Name, availability(r.Passed, r.Optional), r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows))

			missing := len(deps.Missing(statuses)) + len(preflight.Blocking(results))
			if missing > 0 {
				return fmt.Errorf("%d required checks failed", missing)
			}
			fmt.Fprintln(out, "All required checks passed")
			return nil
		},
	}
}

func availability(ok, optional bool) string {
	switch {
	case ok:
		return "ok"
	case optional:
		return "missing (optional)"
	default:
		return "missing"
	}
}
