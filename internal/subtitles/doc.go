// Package subtitles parses SRT and ASS/SSA subtitle text into ordered,
// time-coded cues for preview.
//
// Parse never fails: malformed blocks and dialogue lines are skipped, and a
// panic while parsing is recovered into Document.Error. Format selection uses
// the caller's hint when it names a supported format and falls back to content
// detection otherwise.
package subtitles
