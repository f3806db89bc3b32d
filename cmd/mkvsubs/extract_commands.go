package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mkvsubs/internal/api"
	"mkvsubs/internal/extract"
	"mkvsubs/internal/language"
	"mkvsubs/internal/media/ffprobe"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract subtitle tracks or attachments",
	}

	extractCmd.AddCommand(newExtractTrackCommand(ctx))
	extractCmd.AddCommand(newExtractAttachmentCommand(ctx))
	extractCmd.AddCommand(newExtractItemCommand(ctx))

	return extractCmd
}

func newExtractTrackCommand(ctx *commandContext) *cobra.Command {
	var format string
	var jsonOutput bool
	var export exportFlags

	cmd := &cobra.Command{
		Use:   "track <file> <stream-index>",
		Short: "Extract a subtitle track as SRT or ASS",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			result, err := svc.ExtractTrack(cmd.Context(), args[0], index, format)
			if err != nil {
				return extractFailure(err)
			}
			copied, err := export.apply(result.Path)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printTrackResult(cmd, result)
			printExport(cmd, copied)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", extract.FormatSRT, "Output format (srt or ass)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	export.register(cmd)
	return cmd
}

func newExtractAttachmentCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var export exportFlags

	cmd := &cobra.Command{
		Use:   "attachment <file> <attachment-name>",
		Short: "Dump an attachment (font or subtitle) by filename",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			result, err := svc.ExtractAttachment(cmd.Context(), args[0], args[1])
			if err != nil {
				return extractFailure(err)
			}
			copied, err := export.apply(result.Path)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printAttachmentResult(cmd, result)
			printExport(cmd, copied)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	export.register(cmd)
	return cmd
}

func newExtractItemCommand(ctx *commandContext) *cobra.Command {
	var format string
	var lang string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "item <file> [number]",
		Short: "Extract the numbered entry from the analyze listing",
		Long: "Extract the numbered entry from the analyze listing, or with --language the\n" +
			"first subtitle track in that language (\"en\", \"eng\" and \"EN\" all match).",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 2) == (lang != "") {
				return fmt.Errorf("pass either an item number or --language")
			}
			number := 0
			if len(args) == 2 {
				n, err := strconv.Atoi(strings.TrimSpace(args[1]))
				if err != nil || n < 1 {
					return fmt.Errorf("invalid item number %q: use the # column from analyze", args[1])
				}
				number = n
			}
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			analysis, err := svc.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var item ffprobe.SelectionItem
			if lang != "" {
				found, ok := api.FirstTrackWithLanguage(analysis.Items, lang)
				if !ok {
					return noLanguageTrack(args[0], lang)
				}
				item = found
			} else {
				if number > len(analysis.Items) {
					return fmt.Errorf("item %d out of range: %s has %d item(s)", number, args[0], len(analysis.Items))
				}
				item = analysis.Items[number-1]
			}
			result, err := svc.ExtractSelection(cmd.Context(), args[0], item, format)
			if err != nil {
				return extractFailure(err)
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			switch result.Kind {
			case ffprobe.KindTrack:
				printTrackResult(cmd, *result.Track)
			case ffprobe.KindAttachment:
				printAttachmentResult(cmd, *result.Attachment)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format for tracks (srt or ass; default follows the track codec)")
	cmd.Flags().StringVarP(&lang, "language", "l", "", "Pick the first subtitle track in this language instead of a number")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func noLanguageTrack(file, lang string) error {
	return fmt.Errorf("no subtitle track in %s matches language %q (%s)", file, lang, language.DisplayName(lang))
}

func parseIndex(value string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid stream index %q: expected a non-negative integer", value)
	}
	return index, nil
}

// extractFailure appends the diagnostic hint, when there is one, to the error shown to the user.
func extractFailure(err error) error {
	var extractErr *extract.ExtractionError
	if errors.As(err, &extractErr) {
		if hint := extractErr.Hint(); hint != "" {
			return fmt.Errorf("%w\nhint: %s", err, hint)
		}
	}
	return err
}

func printTrackResult(cmd *cobra.Command, result extract.TrackResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%s, %s)\n", result.Path, result.Format, result.Encoding)
	if result.Lossy {
		fmt.Fprintln(out, "Warning: some bytes could not be decoded and were replaced")
	}
}

func printAttachmentResult(cmd *cobra.Command, result extract.AttachmentResult) {
	out := cmd.OutOrStdout()
	kind := "other"
	switch {
	case result.IsSubtitle:
		kind = "subtitle"
	case result.IsFont:
		kind = "font"
	}
	fmt.Fprintf(out, "Wrote %s (%s, %d bytes)\n", result.Path, kind, result.Size)
	if result.Lossy {
		fmt.Fprintln(out, "Warning: some bytes could not be decoded and were replaced")
	}
}
