package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/config"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/idempotency"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/logging"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/submit"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
}

// withStore opens the reservation store, runs fn, and closes it afterwards.
func (c *commandContext) withStore(fn func(*idempotency.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := idempotency.Open(cfg.StorePath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// orchestratorOptions maps the pipeline configuration onto submission options.
func orchestratorOptions(cfg *config.Config) submit.Options {
	return submit.Options{
		ProfileVersion: cfg.Pipeline.ProfileVersion,
		EnableH265:     cfg.Pipeline.EnableH265,
		EnableDASH:     cfg.Pipeline.EnableDash,
		TTL:            time.Duration(cfg.Idempotency.TTLDays) * 24 * time.Hour,
		QueueARN:       cfg.Transcoder.QueueARN,
		RoleARN:        cfg.Transcoder.RoleARN,
		Retry: services.RetryPolicy{
			MaxAttempts: cfg.Idempotency.RetryMaxAttempts,
			BaseDelay:   time.Duration(cfg.Idempotency.RetryBaseDelayMS) * time.Millisecond,
			MaxDelay:    time.Duration(cfg.Idempotency.RetryMaxDelayMS) * time.Millisecond,
			Jitter:      cfg.Idempotency.RetryJitterPercent,
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
