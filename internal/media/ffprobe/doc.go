// Package ffprobe turns ffprobe's human-readable stream report into typed
// subtitle track and attachment records.
//
// ffprobe prints its stream listing on the diagnostic stream; mkvsubs parses
// that text instead of a structured writer so it works with the builds users
// already have. Parsing is tolerant by construction: unknown or malformed lines
// are skipped and text with no recognizable entries yields an empty Result.
//
// Key types:
//   - TrackDescriptor: one subtitle stream (container index, language, codec)
//   - AttachmentDescriptor: one embedded file classified as subtitle or font
//   - Result: ordered tracks and attachments found in one report
//   - SelectionItem: a track or attachment picked for extraction
//
// Entry points:
//   - ParseDiagnostics: pure text to Result conversion
//   - Inspect: runs ffprobe through a toolexec.Runner and parses the report
package ffprobe
