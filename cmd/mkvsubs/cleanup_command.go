package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mkvsubs/internal/staging"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove extracted subtitles and attachments older than the retention age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			age := maxAge
			if age <= 0 {
				age = cfg.RetentionMaxAge()
			}
			out := cmd.OutOrStdout()

			if dryRun {
				entries, err := staging.ListOutputs(cfg.Paths.OutputDir)
				if err != nil {
					return fmt.Errorf("list outputs: %w", err)
				}
				cutoff := time.Now().Add(-age)
				stale := 0
				for _, entry := range entries {
					if entry.ModTime.Before(cutoff) {
						stale++
						fmt.Fprintf(out, "Would remove %s (%s, %d bytes)\n", entry.Path, entry.Kind, entry.Size)
					}
				}
				fmt.Fprintf(out, "%d of %d output(s) older than %s\n", stale, len(entries), age)
				return nil
			}

			result := staging.CleanStale(cmd.Context(), cfg.Paths.OutputDir, age, ctx.commandLogger())
			for _, path := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			fmt.Fprintf(out, "Removed %d output(s) older than %s\n", len(result.Removed), age)
			if len(result.Errors) > 0 {
				for _, failure := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "Failed to remove %s: %v\n", failure.Path, failure.Error)
				}
				return fmt.Errorf("cleanup: %d output(s) could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Remove outputs older than this (default: retention.max_age_hours)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be removed without deleting")
	return cmd
}
