// Package api is the upward-facing entry point of the subtitle pipeline.
//
// Service is constructed once per process from a loaded configuration and
// exposes the operations the CLI (or any other host) calls:
//
//   - ResolvePath: bare filename to real path across the search roots
//   - Analyze: ffprobe stream report to tracks, attachments and selection items
//   - ExtractTrack / ExtractAttachment / ExtractSelection: ffmpeg extraction
//   - ParseSubtitleDocument: subtitle text to ordered cues
//   - PreviewTrack: extract plus parse, truncated for display
//
// Every call stamps a correlation id on its context (unless one is present)
// so log lines from resolution, analysis and extraction can be joined.
package api
