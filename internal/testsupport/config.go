package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mkvsubs/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The output, log and single media directory exist on return.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Media.SearchDirectories = []string{filepath.Join(base, "media")}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	dirs := append([]string{cfgVal.Paths.OutputDir, cfgVal.Paths.LogDir}, cfgVal.Media.SearchDirectories...)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return builder.cfg
}

// WithSearchDirectories replaces the search roots with the named subdirectories of the base dir.
func WithSearchDirectories(names ...string) ConfigOption {
	return func(b *configBuilder) {
		dirs := make([]string, 0, len(names))
		for _, name := range names {
			dirs = append(dirs, filepath.Join(b.baseDir, name))
		}
		b.cfg.Media.SearchDirectories = dirs
	}
}

// WithFallbackEncoding overrides the decoding fallback charset.
func WithFallbackEncoding(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Decoding.FallbackEncoding = name
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}

// MediaDir returns the first search root of the generated config.
func MediaDir(cfg *config.Config) string {
	if len(cfg.Media.SearchDirectories) == 0 {
		return ""
	}
	return cfg.Media.SearchDirectories[0]
}
