package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mkvsubs/internal/api"
	"mkvsubs/internal/language"
	"mkvsubs/internal/media/ffprobe"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "List subtitle tracks and attachments in a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			result, err := svc.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printAnalysis(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printAnalysis(cmd *cobra.Command, result api.AnalyzeResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File: %s\n", result.Path)
	if len(result.Items) == 0 {
		fmt.Fprintln(out, "No subtitle tracks or attachments found")
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Kind", "Stream", "Language", "Format", "Description"},
		analysisRows(result.Items),
		[]columnAlignment{alignRight, alignLeft, alignRight},
	))
	fmt.Fprintf(out, "%d track(s), %d attachment(s)\n", len(result.Tracks), len(result.Attachments))
}

func analysisRows(items []ffprobe.SelectionItem) [][]string {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		pos := strconv.Itoa(i + 1)
		switch item.Kind {
		case ffprobe.KindTrack:
			track := item.Track
			rows = append(rows, []string{
				pos,
				"track",
				strconv.Itoa(track.Index),
				language.DisplayName(track.Language),
				track.Format,
				item.Label(),
			})
		case ffprobe.KindAttachment:
			att := item.Attachment
			rows = append(rows, []string{
				pos,
				"attachment",
				"-",
				"-",
				att.Kind(),
				att.Filename,
			})
		}
	}
	return rows
}
