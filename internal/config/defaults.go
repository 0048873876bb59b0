package config

const (
	defaultDataDir            = "~/.local/share/animepipe"
	defaultSpoolDir           = "~/.local/share/animepipe/spool"
	defaultLogDir             = "~/.local/share/animepipe/logs"
	defaultProfileVersion     = "v1.0"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultTTLDays            = 7
	defaultRetryMaxAttempts   = 3
	defaultRetryBaseDelayMS   = 100
	defaultRetryMaxDelayMS    = 2000
	defaultRetryJitterPercent = 0.2
	defaultNotifyTimeout      = 10
	defaultDurationTolerance  = 2.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			SpoolDir: defaultSpoolDir,
			LogDir:   defaultLogDir,
		},
		Pipeline: Pipeline{
			ProfileVersion: defaultProfileVersion,
			EnableH265:     true,
			EnableDash:     true,
		},
		Idempotency: Idempotency{
			TTLDays:            defaultTTLDays,
			RetryMaxAttempts:   defaultRetryMaxAttempts,
			RetryBaseDelayMS:   defaultRetryBaseDelayMS,
			RetryMaxDelayMS:    defaultRetryMaxDelayMS,
			RetryJitterPercent: defaultRetryJitterPercent,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		OutputValidation: OutputValidation{
			DurationToleranceSeconds: defaultDurationTolerance,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
