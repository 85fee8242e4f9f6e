package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"clipsight/internal/config"
	"clipsight/internal/extract"
	"clipsight/internal/logging"
	"clipsight/internal/report"
	"clipsight/internal/validation"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// newValidator builds a validator from config, honoring a --strict override.
func (c *commandContext) newValidator(strict bool) (*validation.Validator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	mode, err := validation.ParseMode(cfg.Validation.Mode)
	if err != nil {
		return nil, err
	}
	if strict {
		mode = validation.Strict
	}
	return validation.New(mode,
		validation.WithLogger(c.ensureLogger()),
		validation.WithFrameTolerance(cfg.Validation.FrameTolerance),
	), nil
}

func (c *commandContext) newExtractor(strict bool) (*extract.Extractor, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	validator, err := c.newValidator(strict)
	if err != nil {
		return nil, err
	}
	return extract.New(validator,
		extract.WithMaxEntries(cfg.Extraction.MaxEntries),
		extract.WithFirstSeconds(cfg.Extraction.FirstSeconds),
		extract.WithLogger(c.ensureLogger()),
	), nil
}

func (c *commandContext) openStore() (*report.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return report.Open(cfg.Paths.ReportDB)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// stdoutIsTerminal gates table rendering; piped output gets plain lines.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func passFail(value bool) string {
	if value {
		return "pass"
	}
	return "FAIL"
}
