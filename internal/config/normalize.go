package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMedia(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeDecoding()
	c.normalizeRetention()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("MKVSUBS_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeMedia expands and de-duplicates the search directories while
// keeping their configured order, which is also the resolution order.
func (c *Config) normalizeMedia() error {
	if value, ok := os.LookupEnv("MKVSUBS_MEDIA_DIRS"); ok && strings.TrimSpace(value) != "" {
		c.Media.SearchDirectories = filepath.SplitList(value)
	}
	dirs, err := normalizeDirectories(c.Media.SearchDirectories)
	if err != nil {
		return err
	}
	c.Media.SearchDirectories = dirs
	return nil
}

func normalizeDirectories(values []string) ([]string, error) {
	dirs := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, dir := range values {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		expanded, err := expandPath(dir)
		if err != nil {
			return nil, fmt.Errorf("media.search_directories: %w", err)
		}
		if _, exists := seen[expanded]; exists {
			continue
		}
		seen[expanded] = struct{}{}
		dirs = append(dirs, expanded)
	}
	return dirs, nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpegBinary = strings.TrimSpace(c.Tools.FFmpegBinary)
	if c.Tools.FFmpegBinary == "" {
		c.Tools.FFmpegBinary = defaultFFmpegBinary
	}
	c.Tools.FFprobeBinary = strings.TrimSpace(c.Tools.FFprobeBinary)
	if c.Tools.FFprobeBinary == "" {
		c.Tools.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Tools.CommandTimeout <= 0 {
		c.Tools.CommandTimeout = defaultCommandTimeout
	}
	if c.Tools.MaxOutputBytes <= 0 {
		c.Tools.MaxOutputBytes = defaultMaxOutputBytes
	}
	if c.Tools.MaxFileBytes <= 0 {
		c.Tools.MaxFileBytes = defaultMaxFileBytes
	}
}

func (c *Config) normalizeDecoding() {
	c.Decoding.FallbackEncoding = strings.ToLower(strings.TrimSpace(c.Decoding.FallbackEncoding))
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeRetention() {
	if c.Retention.MaxAgeHours <= 0 {
		c.Retention.MaxAgeHours = defaultRetentionHours
	}
}
