package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	SpoolDir string `toml:"spool_dir"`
	LogDir   string `toml:"log_dir"`
}

// Pipeline contains encoding policy configuration.
type Pipeline struct {
	// ProfileVersion feeds the idempotency token. Bump it when encoding
	// policy changes so previously processed content is re-encoded.
	ProfileVersion string `toml:"profile_version"`
	EnableH265     bool   `toml:"enable_h265"`
	EnableDash     bool   `toml:"enable_dash"`
	InputBucket    string `toml:"input_bucket"`
	OutputBucket   string `toml:"output_bucket"`
}

// Transcoder contains identifiers passed through to the managed transcoding
// service alongside the job specification. They are never interpreted here.
type Transcoder struct {
	QueueARN string `toml:"queue_arn"`
	RoleARN  string `toml:"role_arn"`
	Endpoint string `toml:"endpoint"`
}

// Idempotency contains reservation-store tuning.
type Idempotency struct {
	TTLDays            int     `toml:"ttl_days"`
	RetryMaxAttempts   int     `toml:"retry_max_attempts"`
	RetryBaseDelayMS   int     `toml:"retry_base_delay_ms"`
	RetryMaxDelayMS    int     `toml:"retry_max_delay_ms"`
	RetryJitterPercent float64 `toml:"retry_jitter_percent"`
}

// Notifications contains webhook notification settings.
type Notifications struct {
	WebhookURL     string `toml:"webhook_url"`
	WebhookSecret  string `toml:"webhook_secret"`
	RequestTimeout int    `toml:"request_timeout"`
	Enabled        bool   `toml:"enabled"`
}

// OutputValidation contains output playlist checking settings.
type OutputValidation struct {
	DurationToleranceSeconds float64 `toml:"duration_tolerance_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the transcoding pipeline.
//
// Configuration sections by subsystem:
//   - Paths: data, spool, and log directories
//   - Pipeline: encoding policy (profile version, codec toggles, buckets)
//   - Transcoder: managed-transcoder identifiers passed through to jobs
//   - Idempotency: reservation-store TTL and retry tuning
//   - Notifications: webhook delivery of pipeline events
//   - OutputValidation: playlist duration tolerance
//   - Logging: log format and level
type Config struct {
	Paths            Paths            `toml:"paths"`
	Pipeline         Pipeline         `toml:"pipeline"`
	Transcoder       Transcoder       `toml:"transcoder"`
	Idempotency      Idempotency      `toml:"idempotency"`
	Notifications    Notifications    `toml:"notifications"`
	OutputValidation OutputValidation `toml:"output_validation"`
	Logging          Logging          `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/animepipe/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("animepipe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.SpoolDir) != "" {
		if err := os.MkdirAll(c.Paths.SpoolDir, 0o755); err != nil {
			return fmt.Errorf("create spool directory %q: %w", c.Paths.SpoolDir, err)
		}
	}
	return nil
}

// StorePath returns the location of the idempotency database.
func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.DataDir, "idempotency.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
