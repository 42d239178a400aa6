package config

import (
	"fmt"

	"fieldstack/internal/stacker"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCorrection(); err != nil {
		return err
	}
	if err := c.validateStacking(); err != nil {
		return err
	}
	if c.Cache.Fields < 1 {
		return fmt.Errorf("cache.fields must be at least 1, got %d", c.Cache.Fields)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateCorrection() error {
	if c.Correction.OvercorrectExtension < 0 {
		return fmt.Errorf("correction.overcorrect_extension must not be negative")
	}
	if c.Correction.MaxReplacementDistance < 1 {
		return fmt.Errorf("correction.max_replacement_distance must be at least 1")
	}
	return nil
}

func (c *Config) validateStacking() error {
	if _, err := stacker.ParseMode(c.Stacking.Mode); err != nil {
		return fmt.Errorf("stacking.mode: %w", err)
	}
	if _, err := stacker.ParseSideMode(c.Stacking.AudioMode); err != nil {
		return fmt.Errorf("stacking.audio_mode: %w", err)
	}
	if _, err := stacker.ParseSideMode(c.Stacking.EFMMode); err != nil {
		return fmt.Errorf("stacking.efm_mode: %w", err)
	}
	if c.Stacking.SmartThreshold < 0 || c.Stacking.SmartThreshold > 128 {
		return fmt.Errorf("stacking.smart_threshold %d outside 0..128", c.Stacking.SmartThreshold)
	}
	if c.Stacking.Threads < 0 {
		return fmt.Errorf("stacking.threads must not be negative")
	}
	return nil
}
