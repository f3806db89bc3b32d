package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mkvsubs/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MKVSUBS_MEDIA_DIRS", "")
	t.Setenv("MKVSUBS_OUTPUT_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "mkvsubs", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, ".local", "share", "mkvsubs", "output")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if got := cfg.SearchDirectories(); len(got) != 1 || got[0] != filepath.Join(tempHome, "Videos") {
		t.Fatalf("unexpected search directories: %v", got)
	}
	if cfg.Media.SearchDepth != 2 {
		t.Fatalf("expected default search depth 2, got %d", cfg.Media.SearchDepth)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected binaries: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if cfg.CommandTimeout() != 300*time.Second {
		t.Fatalf("unexpected command timeout: %s", cfg.CommandTimeout())
	}
	if cfg.Tools.MaxOutputBytes != 10*1024*1024 {
		t.Fatalf("unexpected max output bytes: %d", cfg.Tools.MaxOutputBytes)
	}
	if cfg.Decoding.FallbackEncoding != "gb18030" {
		t.Fatalf("unexpected fallback encoding: %q", cfg.Decoding.FallbackEncoding)
	}
	if cfg.RetentionMaxAge() != 24*time.Hour {
		t.Fatalf("unexpected retention: %s", cfg.RetentionMaxAge())
	}
}

func TestLoadCustomConfigNormalizesSearchDirectories(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MKVSUBS_MEDIA_DIRS", "")
	t.Setenv("MKVSUBS_OUTPUT_DIR", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `[paths]
output_dir = "~/out"

[media]
search_directories = ["~/movies", " ", "~/movies/", "/srv/media"]
search_depth = 3

[tools]
ffmpeg_binary = " /opt/ffmpeg/bin/ffmpeg "
command_timeout = 0

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	want := []string{filepath.Join(tempHome, "movies"), "/srv/media"}
	got := cfg.SearchDirectories()
	if len(got) != len(want) {
		t.Fatalf("unexpected search directories: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("search directory %d: got %q want %q", i, got[i], want[i])
		}
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "out") {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Media.SearchDepth != 3 {
		t.Fatalf("expected depth 3, got %d", cfg.Media.SearchDepth)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected trimmed ffmpeg binary, got %q", cfg.FFmpegBinary())
	}
	if cfg.Tools.CommandTimeout != config.Default().Tools.CommandTimeout {
		t.Fatalf("expected zero timeout to fall back to default, got %d", cfg.Tools.CommandTimeout)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging settings, got %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	first := filepath.Join(tempHome, "a")
	second := filepath.Join(tempHome, "b")
	t.Setenv("MKVSUBS_MEDIA_DIRS", first+string(os.PathListSeparator)+second)
	t.Setenv("MKVSUBS_OUTPUT_DIR", filepath.Join(tempHome, "extracted"))

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	dirs := cfg.SearchDirectories()
	if len(dirs) != 2 || dirs[0] != first || dirs[1] != second {
		t.Fatalf("unexpected search directories from env: %v", dirs)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "extracted") {
		t.Fatalf("unexpected output dir from env: %q", cfg.Paths.OutputDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"depth", func(c *config.Config) { c.Media.SearchDepth = 42 }, "media.search_depth"},
		{"timeout", func(c *config.Config) { c.Tools.CommandTimeout = -1 }, "tools.command_timeout"},
		{"charset", func(c *config.Config) { c.Decoding.FallbackEncoding = "klingon-8" }, "decoding.fallback_encoding"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"output", func(c *config.Config) { c.Paths.OutputDir = "" }, "paths.output_dir"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateAllowsDisabledFallbackEncoding(t *testing.T) {
	cfg := config.Default()
	cfg.Decoding.FallbackEncoding = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected empty fallback encoding to be valid, got %v", err)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MKVSUBS_MEDIA_DIRS", "")
	t.Setenv("MKVSUBS_OUTPUT_DIR", "")
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	if decoded.Media.SearchDepth != 2 {
		t.Fatalf("expected sample depth 2, got %d", decoded.Media.SearchDepth)
	}
	if _, _, _, err := config.Load(target); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

func TestAddSearchDirectoryPersistsAndDeduplicates(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MKVSUBS_MEDIA_DIRS", "")
	t.Setenv("MKVSUBS_OUTPUT_DIR", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	media := filepath.Join(tempHome, "media")
	if err := os.MkdirAll(media, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	dirs, err := config.AddSearchDirectory(configPath, media)
	if err != nil {
		t.Fatalf("AddSearchDirectory: %v", err)
	}
	if len(dirs) != 2 || dirs[1] != media {
		t.Fatalf("expected default plus added directory, got %v", dirs)
	}

	again, err := config.AddSearchDirectory(configPath, media+"/")
	if err != nil {
		t.Fatalf("AddSearchDirectory (repeat): %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("expected duplicate to be ignored, got %v", again)
	}

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be written")
	}
	loaded := cfg.SearchDirectories()
	if len(loaded) != 2 || loaded[1] != media {
		t.Fatalf("expected persisted directories, got %v", loaded)
	}
}

func TestAddSearchDirectoryRejectsMissingDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	_, err := config.AddSearchDirectory(configPath, filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, config.ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
	if _, statErr := os.Stat(configPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected config file to stay absent, got %v", statErr)
	}
}
