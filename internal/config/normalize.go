package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeIdempotency()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SpoolDir) == "" {
		c.Paths.SpoolDir = defaultSpoolDir
	}
	if c.Paths.SpoolDir, err = expandPath(c.Paths.SpoolDir); err != nil {
		return fmt.Errorf("paths.spool_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	c.Pipeline.ProfileVersion = strings.TrimSpace(c.Pipeline.ProfileVersion)
	if c.Pipeline.ProfileVersion == "" {
		c.Pipeline.ProfileVersion = defaultProfileVersion
	}
	c.Pipeline.InputBucket = strings.TrimSpace(c.Pipeline.InputBucket)
	c.Pipeline.OutputBucket = strings.TrimSpace(c.Pipeline.OutputBucket)
	c.Transcoder.QueueARN = strings.TrimSpace(c.Transcoder.QueueARN)
	c.Transcoder.RoleARN = strings.TrimSpace(c.Transcoder.RoleARN)
	c.Transcoder.Endpoint = strings.TrimSpace(c.Transcoder.Endpoint)
}

func (c *Config) normalizeIdempotency() {
	if c.Idempotency.TTLDays <= 0 {
		c.Idempotency.TTLDays = defaultTTLDays
	}
	if c.Idempotency.RetryMaxAttempts <= 0 {
		c.Idempotency.RetryMaxAttempts = defaultRetryMaxAttempts
	}
	if c.Idempotency.RetryBaseDelayMS <= 0 {
		c.Idempotency.RetryBaseDelayMS = defaultRetryBaseDelayMS
	}
	if c.Idempotency.RetryMaxDelayMS <= 0 {
		c.Idempotency.RetryMaxDelayMS = defaultRetryMaxDelayMS
	}
	if c.Idempotency.RetryJitterPercent < 0 || c.Idempotency.RetryJitterPercent > 1 {
		c.Idempotency.RetryJitterPercent = defaultRetryJitterPercent
	}
	if c.OutputValidation.DurationToleranceSeconds <= 0 {
		c.OutputValidation.DurationToleranceSeconds = defaultDurationTolerance
	}
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
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}
