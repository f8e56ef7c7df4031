package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"musictaste/internal/config"
	"musictaste/internal/logging"
	"musictaste/internal/lookupcache"
)

type globalFlags struct {
	config   string
	logLevel string
	json     bool
}

type commandContext struct {
	flags     *globalFlags
	sessionID string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{
		flags:     flags,
		sessionID: uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the session logger once the config is known. Commands
// that change paths must do so before the first call.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, c.flags.logLevel, c.sessionID)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logging: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

func cacheConfig(cfg *config.Config) lookupcache.Config {
	return lookupcache.Config{
		Dir:              cfg.Paths.CacheDir,
		Filename:         cfg.Cache.Filename,
		CompressionLevel: cfg.Cache.CompressionLevel,
	}
}

// withCache opens the configured cache for the duration of fn.
func (c *commandContext) withCache(cmd *cobra.Command, fn func(*lookupcache.Cache) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	return lookupcache.With(cmd.Context(), cacheConfig(cfg), fn, lookupcache.WithLogger(logger))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
