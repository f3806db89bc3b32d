package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

// ErrNotDirectory reports that a directory being added as a search root does
// not exist or is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// AddSearchDirectory appends dir to the persisted search directory list of the
// configuration file at path (the default location when path is empty). The
// directory must exist. Adding a directory that is already present is a no-op.
// The full, normalized search list is returned.
//
// Writers are serialized with an advisory lock next to the config file and the
// file is replaced atomically so concurrent readers never observe a partial write.
func AddSearchDirectory(path, dir string) ([]string, error) {
	target, _, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("add search directory: %w", ErrNotDirectory)
	}
	expanded, err := expandPath(dir)
	if err != nil {
		return nil, fmt.Errorf("add search directory: %w", err)
	}
	info, err := os.Stat(expanded)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("add search directory %q: %w", expanded, ErrNotDirectory)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	lock := flock.New(target + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock config: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	cfg := Default()
	if err := decodeFile(target, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	present := false
	for _, existing := range cfg.Media.SearchDirectories {
		if candidate, err := expandPath(strings.TrimSpace(existing)); err == nil && candidate == expanded {
			present = true
			break
		}
	}
	if !present {
		cfg.Media.SearchDirectories = append(cfg.Media.SearchDirectories, expanded)
		if err := writeFile(target, cfg); err != nil {
			return nil, err
		}
	}

	return normalizeDirectories(cfg.Media.SearchDirectories)
}

func writeFile(path string, cfg Config) error {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
