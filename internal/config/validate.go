package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if !strings.HasPrefix(c.Pipeline.ProfileVersion, "v") {
		return fmt.Errorf("pipeline.profile_version must look like \"v1.0\", got %q", c.Pipeline.ProfileVersion)
	}
	if c.Pipeline.InputBucket != "" && strings.Contains(c.Pipeline.InputBucket, "/") {
		return fmt.Errorf("pipeline.input_bucket must be a bare bucket name, got %q", c.Pipeline.InputBucket)
	}
	if c.Pipeline.OutputBucket != "" && strings.Contains(c.Pipeline.OutputBucket, "/") {
		return fmt.Errorf("pipeline.output_bucket must be a bare bucket name, got %q", c.Pipeline.OutputBucket)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if !c.Notifications.Enabled {
		return nil
	}
	url := strings.TrimSpace(c.Notifications.WebhookURL)
	if url == "" {
		return fmt.Errorf("notifications.webhook_url is required when notifications are enabled")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("notifications.webhook_url must be an http(s) URL, got %q", url)
	}
	return nil
}
