package extract

import (
	"fmt"
	"strings"

	"mkvsubs/internal/services"
)

// maxDiagnosticTail bounds how much of each attempt's ffmpeg output an
// ExtractionError keeps.
const maxDiagnosticTail = 4096

// Attempt records one command variant that did not produce output.
type Attempt struct {
	Command    string `json:"command"`
	Diagnostic string `json:"diagnostic,omitempty"`
	ExitCode   int    `json:"exit_code"`
	Err        error  `json:"-"`
}

// ExtractionError reports that every command variant failed to produce output.
type ExtractionError struct {
	Operation string
	Attempts  []Attempt
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: all %d command variant(s) failed", e.Operation, len(e.Attempts))
	if n := len(e.Attempts); n > 0 {
		last := e.Attempts[n-1]
		switch {
		case last.Err != nil:
			fmt.Fprintf(&b, ": %v", last.Err)
		case strings.TrimSpace(last.Diagnostic) != "":
			fmt.Fprintf(&b, ": %s", lastLine(last.Diagnostic))
		default:
			fmt.Fprintf(&b, ": exit status %d with no output", last.ExitCode)
		}
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() error { return services.ErrExternalTool }

// Hint returns an operator hint derived from the last attempt's diagnostic.
func (e *ExtractionError) Hint() string {
	if len(e.Attempts) == 0 {
		return ""
	}
	return DiagnosticHint(e.Attempts[len(e.Attempts)-1].Diagnostic)
}

func tail(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[len(text)-limit:]
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
