package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mkvsubs/internal/config"
	"mkvsubs/internal/preflight"
)

func newDirsCommand(ctx *commandContext) *cobra.Command {
	dirsCmd := &cobra.Command{
		Use:   "dirs",
		Short: "Manage media search directories",
	}

	dirsCmd.AddCommand(newDirsListCommand(ctx))
	dirsCmd.AddCommand(newDirsAddCommand(ctx))

	return dirsCmd
}

func newDirsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show search directories in resolution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs := cfg.SearchDirectories()
			if jsonOutput {
				return writeJSON(cmd, dirs)
			}
			printDirectories(cmd, dirs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newDirsAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "add <dir>",
		Short:       "Append a directory to the persisted search list",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := config.AddSearchDirectory(ctx.configPath(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Search directories (%d):\n", len(dirs))
			printDirectories(cmd, dirs)
			return nil
		},
	}
}

func printDirectories(cmd *cobra.Command, dirs []string) {
	out := cmd.OutOrStdout()
	if len(dirs) == 0 {
		fmt.Fprintln(out, "No search directories configured (add one with: mkvsubs dirs add <dir>)")
		return
	}
	rows := make([][]string, 0, len(dirs))
	for i, dir := range dirs {
		check := preflight.CheckDirectoryReadable("", dir)
		rows = append(rows, []string{strconv.Itoa(i + 1), dir, yesNo(check.Passed)})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Directory", "Readable"}, rows, []columnAlignment{alignRight}))
}
