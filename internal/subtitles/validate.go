package subtitles

import "fmt"

// Validate checks a parsed document for timing problems.
// Returns a list of issues found; empty slice means validation passed.
func Validate(doc Document) []string {
	var issues []string
	if doc.Error != "" {
		issues = append(issues, fmt.Sprintf("parse_error: %s", doc.Error))
	}
	if len(doc.Entries) == 0 {
		issues = append(issues, "empty_subtitle_file")
		return issues
	}

	var previousStart float64
	for i, cue := range doc.Entries {
		start, errStart := cue.StartSeconds()
		end, errEnd := cue.EndSeconds()
		if errStart != nil || errEnd != nil {
			issues = append(issues, fmt.Sprintf("invalid_timestamp: cue %d", i+1))
			continue
		}
		if end < start {
			issues = append(issues, fmt.Sprintf("end_before_start: cue %d", i+1))
		}
		// Cue ordering is only enforced for SRT.
		if doc.Format == FormatSRT && i > 0 && start < previousStart {
			issues = append(issues, fmt.Sprintf("out_of_order: cue %d", i+1))
		}
		previousStart = start
	}
	return issues
}
