package subtitles

import (
	"regexp"
	"strings"
)

var (
	srtBlockSeparator = regexp.MustCompile(`(?:\r?\n[ \t]*){2,}`)
	srtTiming         = regexp.MustCompile(`(\d{2}:\d{2}:\d{2},\d{3}) --> (\d{2}:\d{2}:\d{2},\d{3})`)
)

// parseSRT reads blank-line separated blocks: index line, timing line, text.
// Blocks with fewer than three lines or no valid timing line are skipped.
func parseSRT(content string) []Cue {
	cues := []Cue{}
	for _, block := range srtBlockSeparator.Split(strings.TrimSpace(content), -1) {
		lines := strings.Split(block, "\n")
		for i := range lines {
			lines[i] = strings.TrimSuffix(lines[i], "\r")
		}
		if len(lines) < 3 {
			continue
		}
		m := srtTiming.FindStringSubmatch(lines[1])
		if m == nil {
			continue
		}
		cues = append(cues, Cue{
			StartTime: m[1],
			EndTime:   m[2],
			Text:      strings.Join(lines[2:], "\n"),
		})
	}
	return cues
}
