package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mkvsubs/internal/config"
	"mkvsubs/internal/testsupport"
	"mkvsubs/internal/toolexec"
)

type cliTestEnv struct {
	cfg        *config.Config
	tools      *testsupport.FakeMediaTools
	configPath string
	moviePath  string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("MKVSUBS_MEDIA_DIRS", "")
	t.Setenv("MKVSUBS_OUTPUT_DIR", "")

	cfg := testsupport.NewConfig(t, opts...)
	moviePath := filepath.Join(testsupport.MediaDir(cfg), "Show", "movie.mkv")
	testsupport.WriteText(t, moviePath, "mkv")

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg, "")

	return &cliTestEnv{
		cfg:        cfg,
		tools:      testsupport.NewFakeMediaTools(),
		configPath: configPath,
		moviePath:  moviePath,
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, e.tools, e.configPath, args...)
}

func runCLI(t *testing.T, runner toolexec.Runner, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := buildRootCommand(runner)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeTestConfig renders the directories of cfg as TOML; extra is appended verbatim.
func writeTestConfig(t *testing.T, path string, cfg *config.Config, extra string) {
	t.Helper()
	quoted := make([]string, 0, len(cfg.Media.SearchDirectories))
	for _, dir := range cfg.Media.SearchDirectories {
		quoted = append(quoted, fmt.Sprintf("%q", dir))
	}
	content := fmt.Sprintf(
		"[paths]\noutput_dir = %q\nlog_dir = %q\n\n[media]\nsearch_directories = [%s]\n\n[logging]\nformat = \"json\"\nlevel = \"error\"\n%s",
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		strings.Join(quoted, ", "),
		extra,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
