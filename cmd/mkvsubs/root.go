package main

import (
	"github.com/spf13/cobra"

	"mkvsubs/internal/toolexec"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(nil)
}

// buildRootCommand wires the command tree. A non-nil runner replaces the
// ffmpeg/ffprobe subprocess runner for every command.
func buildRootCommand(runner toolexec.Runner) *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)
	ctx.runner = runner

	rootCmd := &cobra.Command{
		Use:           "mkvsubs",
		Short:         "Inspect and extract subtitles from media containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newParseCommand(ctx))
	rootCmd.AddCommand(newDirsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newCleanupCommand(ctx))

	return rootCmd
}
