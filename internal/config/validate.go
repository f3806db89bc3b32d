package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateDecoding(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.SearchDepth < 0 || c.Media.SearchDepth > maxSearchDepth {
		return fmt.Errorf("media.search_depth must be between 0 and %d", maxSearchDepth)
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.CommandTimeout <= 0 {
		return errors.New("tools.command_timeout must be positive")
	}
	if c.Tools.MaxOutputBytes <= 0 {
		return errors.New("tools.max_output_bytes must be positive")
	}
	if c.Tools.MaxFileBytes <= 0 {
		return errors.New("tools.max_file_bytes must be positive")
	}
	return nil
}

func (c *Config) validateDecoding() error {
	name := c.Decoding.FallbackEncoding
	if name == "" {
		return nil
	}
	if _, err := htmlindex.Get(name); err != nil {
		return fmt.Errorf("decoding.fallback_encoding: unsupported charset %q", name)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
