package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"matchtracker/internal/pipeline"
	"matchtracker/internal/resultcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage cached frames and screens",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show cached videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warn, err := cacheStore(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			summaries, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(summaries))
			var total int64
			for _, s := range summaries {
				updated := "unknown"
				if !s.UpdatedAt.IsZero() {
					updated = s.UpdatedAt.Local().Format(stampLayout)
				}
				matches := "-"
				if s.HasScreens {
					matches = strconv.Itoa(s.Matches)
				}
				key := s.Key
				if s.Corrupt {
					key += " (corrupt)"
				}
				rows = append(rows, []string{
					key,
					strconv.Itoa(s.Frames),
					matches,
					humanize.IBytes(uint64(s.Bytes)),
					updated,
				})
				total += s.Bytes
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Video", "Frames", "Matches", "Size", "Updated"},
				rows,
				1, 2, 3,
			))
			fmt.Fprintf(out, "%d entries, %s\n", len(summaries), humanize.IBytes(uint64(total)))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var withFrames bool

	cmd := &cobra.Command{
		Use:   "clear [video-key]",
		Short: "Remove one cache entry, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warn, err := cacheStore(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || store == nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				key := strings.TrimSpace(args[0])
				if err := store.Clear(key); err != nil {
					return err
				}
				if withFrames {
					if err := pipeline.RemoveFrames(cfg, key); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "Cleared cache for %s\n", key)
				return nil
			}

			summaries, err := store.List()
			if err != nil {
				return err
			}
			removed, err := store.ClearAll()
			if err != nil {
				return err
			}
			if withFrames {
				for _, s := range summaries {
					if err := pipeline.RemoveFrames(cfg, s.Key); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(out, "Cleared %d cache entries\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withFrames, "frames", false, "Also delete the sampled frame images")
	return cmd
}

func cacheStore(ctx *commandContext) (*resultcache.Store, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Cache.Enabled {
		return nil, "Result cache is disabled (set cache.enabled = true in config.toml)", nil
	}
	if strings.TrimSpace(cfg.Cache.Dir) == "" {
		return nil, "Cache dir is not configured", nil
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, "", fmt.Errorf("init logger: %w", err)
	}
	return resultcache.Open(cfg.Cache.Dir, logger), "", nil
}
