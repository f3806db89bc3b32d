package ffprobe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mkvsubs/internal/services"
	"mkvsubs/internal/toolexec"
)

// DefaultBinary is used when no ffprobe binary is configured.
const DefaultBinary = "ffprobe"

// Command builds the analysis invocation for path.
func Command(binary, path string) toolexec.Command {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return toolexec.Command{
		Binary: binary,
		Args:   []string{"-hide_banner", "-i", path},
	}
}

// Inspect runs ffprobe against path and parses its stream report.
//
// ffprobe exits non-zero for containers it only partly understands while still
// printing the stream listing, so the exit status is ignored and the captured
// text is parsed regardless. Start failures, timeouts and capture overflow are
// returned as errors.
func Inspect(ctx context.Context, runner toolexec.Runner, binary, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "analyze", "ffprobe inspect", "empty path", nil)
	}
	if runner == nil {
		runner = toolexec.NewCommandRunner()
	}

	cmd := Command(binary, path)
	run, err := runner.Run(ctx, cmd)
	if err != nil {
		if errors.Is(err, services.ErrTimeout) || errors.Is(err, services.ErrOutputLimit) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "analyze", "ffprobe inspect", cmd.String(), err)
	}

	result := ParseDiagnostics(run.Diagnostic)
	result.Diagnostic = run.Diagnostic
	return result, nil
}
