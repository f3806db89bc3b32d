package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mkvsubs/internal/deps"
	"mkvsubs/internal/preflight"
)

type checkReport struct {
	Directories  []preflight.Result `json:"directories"`
	Dependencies []deps.Status      `json:"dependencies"`
	Passed       bool               `json:"passed"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, ffprobe and directory access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			report := checkReport{
				Directories:  preflight.RunAll(cfg),
				Dependencies: deps.ProbeVersions(cmd.Context(), ctx.runner, preflight.CheckSystemDeps(cfg)),
			}
			report.Passed = !directoriesFailed(report.Directories) && !dependenciesMissing(report.Dependencies)

			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printCheckReport(cmd, report)
			}
			if !report.Passed {
				return errors.New("environment check failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printCheckReport(cmd *cobra.Command, report checkReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, status := range report.Dependencies {
		kind, message := dependencyStatus(status)
		fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Directories", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, result := range report.Directories {
		kind, message := preflightStatus(result)
		fmt.Fprintln(out, renderStatusLine(result.Name, kind, message, colorize))
	}
}

// directoriesFailed ignores advisory results such as an empty search list.
func directoriesFailed(results []preflight.Result) bool {
	for _, result := range results {
		if kind, _ := preflightStatus(result); kind == statusError {
			return true
		}
	}
	return false
}

func dependenciesMissing(statuses []deps.Status) bool {
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			return true
		}
	}
	return false
}
