package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.SpoolDir = filepath.Join(base, "spool")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Pipeline.InputBucket = "test-mezzanine"
	cfg.Pipeline.OutputBucket = "test-delivery"
	cfg.Transcoder.QueueARN = "arn:aws:mediaconvert:us-west-2:000000000000:queues/test"
	cfg.Transcoder.RoleARN = "arn:aws:iam::000000000000:role/test-mediaconvert"

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.SpoolDir, cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithWebhook enables notifications against the given endpoint.
func WithWebhook(url, secret string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.Enabled = true
		cfg.Notifications.WebhookURL = url
		cfg.Notifications.WebhookSecret = secret
	}
}

// WithH265 toggles the H.265 rungs on the generated config.
func WithH265(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.EnableH265 = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
