package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must not be empty")
	}
	return nil
}

func (c *Config) validateConvert() error {
	switch c.Convert.Format {
	case "jpeg", "jpg", "png", "webp":
	default:
		return fmt.Errorf("convert.format: unsupported value %q (expected jpeg, png, or webp)", c.Convert.Format)
	}
	if c.Convert.Quality <= 0 || c.Convert.Quality > 1 {
		return fmt.Errorf("convert.quality: %v is outside (0, 1]", c.Convert.Quality)
	}
	switch c.Convert.ResizeMode {
	case "scale", "pixel", "cm", "centimeter":
	default:
		return fmt.Errorf("convert.resize_mode: unsupported value %q (expected scale, pixel, or cm)", c.Convert.ResizeMode)
	}
	if c.Convert.Scale <= 0 {
		return fmt.Errorf("convert.scale: %v must be positive", c.Convert.Scale)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxConcurrent < 0 {
		return fmt.Errorf("workflow.max_concurrent: %d must not be negative", c.Workflow.MaxConcurrent)
	}
	if c.Workflow.PollInterval <= 0 {
		return fmt.Errorf("workflow.poll_interval: %d must be positive", c.Workflow.PollInterval)
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.DownloadDelayMS < 0 {
		return fmt.Errorf("export.download_delay_ms: %d must not be negative", c.Export.DownloadDelayMS)
	}
	if strings.ContainsAny(c.Export.ZipName, "/\\") {
		return fmt.Errorf("export.zip_name: %q must be a bare file name", c.Export.ZipName)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
