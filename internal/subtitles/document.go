package subtitles

import (
	"fmt"
	"strings"
)

const (
	FormatSRT     = "srt"
	FormatASS     = "ass"
	FormatUnknown = "unknown"
)

// Cue is one subtitle entry. Times are kept verbatim in the source notation.
type Cue struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Text      string `json:"text"`
}

// StartSeconds converts StartTime to seconds.
func (c Cue) StartSeconds() (float64, error) {
	return ParseTimecode(c.StartTime)
}

// EndSeconds converts EndTime to seconds.
func (c Cue) EndSeconds() (float64, error) {
	return ParseTimecode(c.EndTime)
}

// Document is the parsed form of one subtitle file.
type Document struct {
	Format  string `json:"format"`
	Entries []Cue  `json:"entries"`
	Error   string `json:"error,omitempty"`
}

// Parse converts subtitle text to a Document. hint may be "srt", "ass" or
// "ssa"; anything else triggers detection.
func Parse(text, hint string) (doc Document) {
	format := normalizeHint(hint)
	defer func() {
		if r := recover(); r != nil {
			if format == "" {
				format = FormatUnknown
			}
			doc = Document{Format: format, Entries: []Cue{}, Error: fmt.Sprint(r)}
		}
	}()

	if text == "" {
		if format == "" {
			format = FormatUnknown
		}
		return Document{Format: format, Entries: []Cue{}}
	}
	if format == "" {
		format = DetectFormat(text)
	}

	switch format {
	case FormatASS:
		return Document{Format: FormatASS, Entries: parseASS(text)}
	default:
		return Document{Format: FormatSRT, Entries: parseSRT(text)}
	}
}

// DetectFormat reports "ass" for text carrying ASS section headers, else "srt".
func DetectFormat(text string) string {
	if strings.Contains(text, "[Script Info]") || strings.Contains(text, "[V4+ Styles]") {
		return FormatASS
	}
	return FormatSRT
}

func normalizeHint(hint string) string {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "srt":
		return FormatSRT
	case "ass", "ssa":
		return FormatASS
	default:
		return ""
	}
}
