package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pronounce/internal/report"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the transcript cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cached transcripts: none")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				language := entry.Language
				if language == "" {
					language = "auto"
				}
				rows = append(rows, []string{
					shortHash(entry.AudioSHA256),
					entry.Source,
					language,
					strconv.Itoa(entry.Words),
					humanize.Bytes(uint64(max(entry.AudioBytes, 0))),
					humanize.Time(entry.CreatedAt),
				})
			}
			fmt.Fprintln(out, report.Grid(
				[]string{"Audio", "Source", "Language", "Words", "Size", "Cached"},
				rows, 3, 4,
			))
			fmt.Fprintf(out, "%d cached transcript(s) in %s\n", len(entries), store.Path())
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached transcript(s)\n", removed)
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThanDays int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached transcripts older than cache.max_age_days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			maxAge := cfg.CacheMaxAge()
			if cmd.Flags().Changed("older-than-days") {
				if olderThanDays < 0 {
					return fmt.Errorf("--older-than-days must be zero or positive")
				}
				maxAge = time.Duration(olderThanDays) * 24 * time.Hour
			}
			out := cmd.OutOrStdout()
			if maxAge <= 0 {
				fmt.Fprintln(out, "Cache retention is disabled (cache.max_age_days = 0); nothing pruned")
				return nil
			}

			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-maxAge))
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(out, "No cache entries pruned")
				return nil
			}
			fmt.Fprintf(out, "Pruned %d cached transcript(s) older than %d day(s)\n", removed, int(maxAge/(24*time.Hour)))
			return nil
		},
	}
	cmd.Flags().IntVar(&olderThanDays, "older-than-days", 0, "Override cache.max_age_days for this run")
	return cmd
}

func shortHash(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
