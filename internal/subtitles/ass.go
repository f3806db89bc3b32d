package subtitles

import (
	"regexp"
	"strings"
)

var assOverride = regexp.MustCompile(`\{[^}]*\}`)

var assEscapes = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, " ")

// parseASS reads Dialogue lines from the [Events] section using the column
// order declared by its Format line. Dialogue before a Format line is ignored.
func parseASS(content string) []Cue {
	cues := []Cue{}
	inEvents := false
	var columns []string
	startIdx, endIdx, textIdx := -1, -1, -1

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			inEvents = strings.EqualFold(trimmed, "[Events]")
			continue
		}
		if !inEvents {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "Format:"):
			columns = splitASSFields(trimmed[len("Format:"):], -1)
			startIdx = indexOf(columns, "Start")
			endIdx = indexOf(columns, "End")
			textIdx = indexOf(columns, "Text")
		case strings.HasPrefix(trimmed, "Dialogue:") && columns != nil:
			if startIdx < 0 || endIdx < 0 || textIdx < 0 {
				continue
			}
			fields := splitASSFields(trimmed[len("Dialogue:"):], len(columns))
			if len(fields) <= max(startIdx, endIdx, textIdx) {
				continue
			}
			cues = append(cues, Cue{
				StartTime: fields[startIdx],
				EndTime:   fields[endIdx],
				Text:      CleanASSText(fields[textIdx]),
			})
		}
	}
	return cues
}

// splitASSFields splits on commas outside double quotes, producing at most
// limit fields (limit < 0 means no limit); the last field keeps any further
// commas. Quotes are preserved and fields are trimmed.
func splitASSFields(line string, limit int) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range line {
		if r == ',' && !quoted && (limit < 0 || len(fields) < limit-1) {
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		if r == '"' {
			quoted = !quoted
		}
		current.WriteRune(r)
	}
	if last := strings.TrimSpace(current.String()); last != "" || len(fields) > 0 {
		fields = append(fields, last)
	}
	return fields
}

// CleanASSText removes {...} override blocks and expands line-break and hard-space escapes.
func CleanASSText(text string) string {
	return assEscapes.Replace(assOverride.ReplaceAllString(text, ""))
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if strings.EqualFold(v, want) {
			return i
		}
	}
	return -1
}
