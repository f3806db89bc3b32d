package toolexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Command describes one subprocess invocation.
type Command struct {
	Binary string
	Args   []string
	// Dir is the working directory; empty means the current directory.
	Dir string
}

// String renders the command the way an operator would type it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Binary))
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if strings.ContainsAny(arg, " \t\"'") {
		return fmt.Sprintf("%q", arg)
	}
	return arg
}

// Result captures what a finished subprocess produced.
type Result struct {
	// Diagnostic holds the captured stderr (plus stdout when merged).
	Diagnostic string
	// ExitCode is the process exit status, or -1 when the process did not exit normally.
	ExitCode int
	Duration time.Duration
}

// Runner abstracts command execution for testability.
//
// Run returns a nil error when the process started and exited, whatever its
// exit status; a non-zero status is reported through Result.ExitCode because
// the media tools print useful diagnostics and sometimes valid output on
// failure. Errors are reserved for start failures, timeouts and capture
// overflow.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Option configures a CommandRunner.
type Option func(*CommandRunner)

// WithTimeout bounds each invocation. Zero disables the runner-level timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *CommandRunner) {
		if timeout >= 0 {
			r.timeout = timeout
		}
	}
}

// WithMaxOutputBytes bounds the captured diagnostic output.
func WithMaxOutputBytes(limit int64) Option {
	return func(r *CommandRunner) {
		if limit > 0 {
			r.maxOutput = limit
		}
	}
}

// WithMergedStdout captures stdout into the diagnostic buffer as well.
func WithMergedStdout() Option {
	return func(r *CommandRunner) {
		r.mergeStdout = true
	}
}

const (
	defaultMaxOutput = 10 * 1024 * 1024
	// waitDelay bounds how long Wait lingers on pipes held open by orphaned children.
	waitDelay = 2 * time.Second
)

// CommandRunner executes commands with os/exec.
type CommandRunner struct {
	timeout     time.Duration
	maxOutput   int64
	mergeStdout bool
}

// NewCommandRunner constructs a runner with the provided options.
func NewCommandRunner(opts ...Option) *CommandRunner {
	r := &CommandRunner{maxOutput: defaultMaxOutput}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd and waits for it to finish.
func (r *CommandRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	binary := strings.TrimSpace(cmd.Binary)
	if binary == "" {
		return Result{ExitCode: -1}, errors.New("toolexec: empty binary")
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(ctx, r.timeout)
		defer cancelTimeout()
	}
	runCtx, cancel := context.WithCancel(runCtx)
	defer cancel()

	capture := newBoundedBuffer(r.maxOutput, cancel)
	proc := exec.CommandContext(runCtx, binary, cmd.Args...) //nolint:gosec
	proc.Dir = cmd.Dir
	proc.WaitDelay = waitDelay
	proc.Stderr = capture
	if r.mergeStdout {
		proc.Stdout = capture
	}

	started := time.Now()
	runErr := proc.Run()
	result := Result{
		Diagnostic: capture.String(),
		ExitCode:   -1,
		Duration:   time.Since(started),
	}
	if proc.ProcessState != nil {
		result.ExitCode = proc.ProcessState.ExitCode()
	}

	switch {
	case capture.Overflowed():
		return result, &OutputLimitError{Command: cmd.String(), Limit: r.maxOutput}
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return result, &TimeoutError{Command: cmd.String(), Timeout: r.timeout, Diagnostic: result.Diagnostic}
	case ctx.Err() != nil:
		return result, ctx.Err()
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return result, nil
		}
		return result, fmt.Errorf("start %s: %w", binary, runErr)
	}
	return result, nil
}
