package preflight

import (
	"context"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Spool directory", cfg.Paths.SpoolDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckStore(ctx, cfg.StorePath()))

	if cfg.Notifications.Enabled {
		results = append(results, CheckWebhook(ctx, cfg.Notifications.WebhookURL))
	}

	return results
}

// Passed reports whether every check in results succeeded.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
