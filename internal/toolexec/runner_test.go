package toolexec

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"mkvsubs/internal/services"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestCommandString(t *testing.T) {
	cmd := Command{Binary: "ffmpeg", Args: []string{"-i", "/media/My Movie.mkv", "-dump_attachment:t", ""}}
	got := cmd.String()
	want := `ffmpeg -i "/media/My Movie.mkv" -dump_attachment:t ""`
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestRunCapturesStderrAndToleratesNonZeroExit(t *testing.T) {
	sh := requireShell(t)
	runner := NewCommandRunner(WithTimeout(5 * time.Second))
	result, err := runner.Run(context.Background(), Command{
		Binary: sh,
		Args:   []string{"-c", "echo 'Stream #0:2(eng): Subtitle: subrip' >&2; exit 1"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", result.ExitCode)
	}
	if !strings.Contains(result.Diagnostic, "Subtitle: subrip") {
		t.Fatalf("diagnostic missing stderr text: %q", result.Diagnostic)
	}
}

func TestRunStdoutIgnoredUnlessMerged(t *testing.T) {
	sh := requireShell(t)
	script := []string{"-c", "echo out; echo err >&2"}

	plain, err := NewCommandRunner().Run(context.Background(), Command{Binary: sh, Args: script})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(plain.Diagnostic, "out") {
		t.Fatalf("stdout leaked into diagnostic: %q", plain.Diagnostic)
	}

	merged, err := NewCommandRunner(WithMergedStdout()).Run(context.Background(), Command{Binary: sh, Args: script})
	if err != nil {
		t.Fatalf("Run merged: %v", err)
	}
	if !strings.Contains(merged.Diagnostic, "out") || !strings.Contains(merged.Diagnostic, "err") {
		t.Fatalf("merged diagnostic incomplete: %q", merged.Diagnostic)
	}
}

func TestRunHonoursWorkingDirectory(t *testing.T) {
	sh := requireShell(t)
	dir := t.TempDir()
	result, err := NewCommandRunner().Run(context.Background(), Command{
		Binary: sh,
		Args:   []string{"-c", "pwd >&2"},
		Dir:    dir,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(result.Diagnostic, dir) {
		t.Fatalf("diagnostic %q does not show working dir %q", result.Diagnostic, dir)
	}
}

func TestRunTimeout(t *testing.T) {
	sh := requireShell(t)
	runner := NewCommandRunner(WithTimeout(100 * time.Millisecond))
	_, err := runner.Run(context.Background(), Command{Binary: sh, Args: []string{"-c", "exec sleep 5"}})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %T: %v", err, err)
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("timeout error should match services.ErrTimeout: %v", err)
	}
}

func TestRunOutputLimit(t *testing.T) {
	sh := requireShell(t)
	runner := NewCommandRunner(WithMaxOutputBytes(64), WithTimeout(5*time.Second))
	_, err := runner.Run(context.Background(), Command{
		Binary: sh,
		Args:   []string{"-c", "i=0; while [ $i -lt 200 ]; do echo 'noisy diagnostic line' >&2; i=$((i+1)); done"},
	})
	if err == nil {
		t.Fatal("expected output limit error")
	}
	var limitErr *OutputLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected *OutputLimitError, got %T: %v", err, err)
	}
	if limitErr.Limit != 64 {
		t.Fatalf("limit = %d, want 64", limitErr.Limit)
	}
	if !errors.Is(err, services.ErrOutputLimit) {
		t.Fatalf("limit error should match services.ErrOutputLimit: %v", err)
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := NewCommandRunner().Run(context.Background(), Command{Binary: "/nonexistent/ffprobe-missing"})
	if err == nil {
		t.Fatal("expected start failure")
	}
	if errors.Is(err, services.ErrTimeout) || errors.Is(err, services.ErrOutputLimit) {
		t.Fatalf("start failure misclassified: %v", err)
	}
}

func TestRunEmptyBinary(t *testing.T) {
	if _, err := NewCommandRunner().Run(context.Background(), Command{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
