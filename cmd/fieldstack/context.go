package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"fieldstack/internal/config"
	"fieldstack/internal/dropout"
	"fieldstack/internal/logging"
	"fieldstack/internal/report"
	"fieldstack/internal/stacker"
	"fieldstack/internal/stage"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	registryOnce sync.Once
	registry     *stage.Registry
	registryErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := ""
		explicit := false
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
			explicit = path != ""
		}
		if path == "" {
			path = config.DefaultPath()
		}
		c.config, c.configErr = config.Load(path, explicit)
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}

		level := cfg.Logging.Level
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		paths := []string{"stderr"}
		if cfg.Logging.Path != "" {
			paths = append(paths, cfg.Logging.Path)
		}

		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       level,
			Format:      cfg.Logging.Format,
			OutputPaths: paths,
		})
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) ensureRegistry() (*stage.Registry, error) {
	c.registryOnce.Do(func() {
		logger, err := c.ensureLogger()
		if err != nil {
			c.registryErr = err
			return
		}

		reg := stage.NewRegistry()
		if err := dropout.Register(reg, logger); err != nil {
			c.registryErr = err
			return
		}
		if err := stacker.Register(reg, logger); err != nil {
			c.registryErr = err
			return
		}
		c.registry = reg
	})
	return c.registry, c.registryErr
}

// correctionConfig maps the decoded configuration onto the dropout stage.
func (c *commandContext) correctionConfig() (dropout.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return dropout.Config{}, err
	}
	return dropout.Config{
		OvercorrectExtension:   cfg.Correction.OvercorrectExtension,
		IntrafieldOnly:         cfg.Correction.IntrafieldOnly,
		MaxReplacementDistance: cfg.Correction.MaxReplacementDistance,
		MatchChromaPhase:       cfg.Correction.MatchChromaPhase,
		HighlightCorrections:   cfg.Correction.HighlightCorrections,
		CacheFields:            cfg.Cache.Fields,
	}, nil
}

// stackingConfig maps the decoded configuration onto the stacking stage.
func (c *commandContext) stackingConfig() (stacker.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return stacker.Config{}, err
	}
	mode, err := stacker.ParseMode(cfg.Stacking.Mode)
	if err != nil {
		return stacker.Config{}, err
	}
	audioMode, err := stacker.ParseSideMode(cfg.Stacking.AudioMode)
	if err != nil {
		return stacker.Config{}, err
	}
	efmMode, err := stacker.ParseSideMode(cfg.Stacking.EFMMode)
	if err != nil {
		return stacker.Config{}, err
	}
	return stacker.Config{
		Mode:           mode,
		SmartThreshold: cfg.Stacking.SmartThreshold,
		NoDiffDOD:      cfg.Stacking.NoDiffDOD,
		Passthrough:    cfg.Stacking.Passthrough,
		Threads:        cfg.Stacking.Threads,
		AudioMode:      audioMode,
		EFMMode:        efmMode,
		CacheFields:    cfg.Cache.Fields,
	}, nil
}

// openReport opens the configured report store, or returns nil when report
// persistence is disabled.
func (c *commandContext) openReport(ctx context.Context) (*report.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Report.Enabled {
		return nil, nil
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return report.Open(ctx, cfg.Report.Path, logger)
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
