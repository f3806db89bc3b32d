package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mkvsubs/internal/api"
	"mkvsubs/internal/extract"
	"mkvsubs/internal/subtitles"
)

const maxCueTextWidth = 60

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var format string
	var lang string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "preview <file> [stream-index]",
		Short: "Extract a subtitle track and show its first cues",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 2) == (lang != "") {
				return fmt.Errorf("pass either a stream index or --language")
			}
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			var index int
			if lang != "" {
				analysis, err := svc.Analyze(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				item, ok := api.FirstTrackWithLanguage(analysis.Items, lang)
				if !ok {
					return noLanguageTrack(args[0], lang)
				}
				index = item.Track.Index
			} else if index, err = parseIndex(args[1]); err != nil {
				return err
			}
			result, err := svc.PreviewTrack(cmd.Context(), args[0], index, format, limit)
			if err != nil {
				return extractFailure(err)
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Track file: %s\n", result.Track.Path)
			printPreview(cmd, result.Preview)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", extract.FormatSRT, "Output format (srt or ass)")
	cmd.Flags().StringVarP(&lang, "language", "l", "", "Preview the first subtitle track in this language instead of an index")
	cmd.Flags().IntVarP(&limit, "limit", "n", subtitles.DefaultPreviewLimit, "Maximum cues to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type parseOutput struct {
	Path     string                  `json:"path"`
	Encoding string                  `json:"encoding"`
	Lossy    bool                    `json:"lossy,omitempty"`
	Preview  subtitles.PreviewResult `json:"preview"`
	Issues   []string                `json:"issues,omitempty"`
}

func newParseCommand(ctx *commandContext) *cobra.Command {
	var format string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "parse <subtitle-file>",
		Short: "Parse an SRT or ASS file and list its cues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read subtitle file: %w", err)
			}
			decoded, err := extract.Decode(data, cfg.Decoding.FallbackEncoding)
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			hint := format
			if hint == "" {
				hint = formatFromExtension(path)
			}
			doc := svc.ParseSubtitleDocument(decoded.Text, hint)
			output := parseOutput{
				Path:     path,
				Encoding: decoded.Encoding,
				Lossy:    decoded.Lossy,
				Preview:  subtitles.Preview(doc, limit),
				Issues:   subtitles.Validate(doc),
			}
			if jsonOutput {
				return writeJSON(cmd, output)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File: %s (%s)\n", path, output.Encoding)
			printPreview(cmd, output.Preview)
			for _, issue := range output.Issues {
				fmt.Fprintf(out, "Issue: %s\n", issue)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Subtitle format (srt or ass; detected when omitted)")
	cmd.Flags().IntVarP(&limit, "limit", "n", subtitles.DefaultPreviewLimit, "Maximum cues to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func formatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return subtitles.FormatSRT
	case ".ass", ".ssa":
		return subtitles.FormatASS
	}
	return ""
}

func printPreview(cmd *cobra.Command, preview subtitles.PreviewResult) {
	out := cmd.OutOrStdout()
	if preview.Error != "" {
		fmt.Fprintf(out, "Parse error: %s\n", preview.Error)
	}
	if len(preview.Entries) == 0 {
		fmt.Fprintf(out, "No cues found (format: %s)\n", preview.Format)
		return
	}
	rows := make([][]string, 0, len(preview.Entries))
	for i, cue := range preview.Entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			displayTimecode(cue.StartTime),
			displayTimecode(cue.EndTime),
			truncateCell(strings.ReplaceAll(cue.Text, "\n", " / "), maxCueTextWidth),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Start", "End", "Text"},
		rows,
		[]columnAlignment{alignRight},
	))
	summary := fmt.Sprintf("Format: %s, %d cue(s)", preview.Format, preview.Total)
	if preview.Truncated {
		summary += fmt.Sprintf(", showing first %d", len(preview.Entries))
	}
	fmt.Fprintln(out, summary)
}

// displayTimecode renders SRT and ASS timestamps in one SRT-style layout.
func displayTimecode(raw string) string {
	seconds, err := subtitles.ParseTimecode(raw)
	if err != nil {
		return raw
	}
	return subtitles.FormatTimecode(seconds)
}
