package extract

import "regexp"

// Pre-compiled patterns for turning ffmpeg diagnostics into operator hints.
// Checked in order; the first match wins.
var diagnosticHints = []struct {
	pattern *regexp.Regexp
	hint    string
}{
	{
		regexp.MustCompile(`(?i)Stream map '[^']*' matches no streams|Invalid stream specifier`),
		"the stream index does not exist in this file; re-run analyze to list valid indexes",
	},
	{
		regexp.MustCompile(`(?i)Subtitle encoding currently only possible from text to text or bitmap to bitmap`),
		"bitmap subtitles (PGS/VobSub) cannot be converted to text; extract them with their native codec",
	},
	{
		regexp.MustCompile(`(?i)Unknown encoder|Codec .* is not supported|Could not find tag for codec`),
		"this ffmpeg build lacks the required subtitle encoder; try the other output format",
	},
	{
		regexp.MustCompile(`(?i)Unrecognized option 'dump_attachment|Option dump_attachment not found`),
		"this ffmpeg build does not support -dump_attachment; upgrade ffmpeg",
	},
	{
		regexp.MustCompile(`(?i)No such file or directory`),
		"the media file disappeared or is not readable",
	},
	{
		regexp.MustCompile(`(?i)Permission denied|Read-only file system`),
		"check permissions on the output directory",
	},
	{
		regexp.MustCompile(`(?i)Invalid data found when processing input|EBML header parsing failed`),
		"the container is damaged or not a supported media file",
	},
}

// DiagnosticHint maps ffmpeg diagnostic text to a short next-step hint, or "".
func DiagnosticHint(diagnostic string) string {
	for _, candidate := range diagnosticHints {
		if candidate.pattern.MatchString(diagnostic) {
			return candidate.hint
		}
	}
	return ""
}
