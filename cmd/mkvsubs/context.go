package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mkvsubs/internal/api"
	"mkvsubs/internal/config"
	"mkvsubs/internal/logging"
	"mkvsubs/internal/toolexec"
)

type commandContext struct {
	configFlag *string
	runner     toolexec.Runner

	configOnce sync.Once
	config     *config.Config
	configErr  error

	serviceOnce sync.Once
	logger      *slog.Logger
	service     *api.Service
	serviceErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureService() (*api.Service, error) {
	c.serviceOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.serviceErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.serviceErr = err
			return
		}
		c.logger = logger
		c.service, c.serviceErr = api.NewService(cfg, api.WithLogger(logger), api.WithRunner(c.runner))
	})
	return c.service, c.serviceErr
}

// commandLogger returns the configured logger, or a discarding one when the
// service could not be built.
func (c *commandContext) commandLogger() *slog.Logger {
	if _, err := c.ensureService(); err != nil || c.logger == nil {
		return logging.NewNop()
	}
	return c.logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
