package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/config"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/logging"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/manifest"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/notifications"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/submit"
)

const (
	processedDirName = "processed"
	failedDirName    = "failed"
	lockFileName     = "animepipe-watch.lock"

	// Writers may still be flushing when the first event arrives, so a file
	// is processed only after its events go quiet for this long.
	defaultDebounce = 500 * time.Millisecond
	sweepInterval   = 200 * time.Millisecond
)

// Submitter resolves a validated manifest into a transcoding job.
type Submitter interface {
	Submit(ctx context.Context, req submit.Request) (*submit.Result, error)
}

// Watcher monitors a spool directory for manifest XML files and submits each
// one through the orchestrator. Exactly one watcher may run per data
// directory; concurrent duplicates across hosts are still safe because the
// reservation store is the authoritative gate.
type Watcher struct {
	spoolDir     string
	processedDir string
	failedDir    string
	inputBucket  string
	outputBucket string

	submitter Submitter
	notifier  notifications.Service
	logger    *slog.Logger

	lock     *flock.Flock
	debounce time.Duration
}

// New constructs a spool watcher from the pipeline configuration.
func New(cfg *config.Config, submitter Submitter, notifier notifications.Service, logger *slog.Logger) (*Watcher, error) {
	if cfg == nil || submitter == nil {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "new", "config and submitter are required", nil)
	}
	spool := strings.TrimSpace(cfg.Paths.SpoolDir)
	if spool == "" {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "new", "spool directory is not configured", nil)
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		spoolDir:     spool,
		processedDir: filepath.Join(spool, processedDirName),
		failedDir:    filepath.Join(spool, failedDirName),
		inputBucket:  cfg.Pipeline.InputBucket,
		outputBucket: cfg.Pipeline.OutputBucket,
		submitter:    submitter,
		notifier:     notifier,
		logger:       logging.NewComponentLogger(logger, "watch"),
		lock:         flock.New(filepath.Join(cfg.Paths.DataDir, lockFileName)),
		debounce:     defaultDebounce,
	}, nil
}

// Run watches the spool directory until the context is cancelled. Manifests
// already present at startup are processed before new events are consumed.
func (w *Watcher) Run(ctx context.Context) error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrTransient, "watch", "run", "acquire watch lock", err)
	}
	if !ok {
		return services.Wrap(services.ErrConfiguration, "watch", "run", "another watch instance holds the lock", nil)
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release watch lock", logging.Error(err))
		}
	}()

	for _, dir := range []string{w.spoolDir, w.processedDir, w.failedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrConfiguration, "watch", "run", "create spool layout", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrTransient, "watch", "run", "create filesystem watcher", err)
	}
	defer watcher.Close()
	if err := watcher.Add(w.spoolDir); err != nil {
		return services.Wrap(services.ErrTransient, "watch", "run", "watch spool directory", err)
	}

	w.logger.Info("watching spool directory", logging.String("spool_dir", w.spoolDir))

	w.sweepExisting(ctx)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isManifestEvent(event) {
				continue
			}
			pending[event.Name] = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("filesystem watcher error", logging.Error(err))
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				w.handle(ctx, path)
			}
		}
	}
}

func isManifestEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), ".xml")
}

// sweepExisting submits manifests dropped into the spool before the watcher
// started.
func (w *Watcher) sweepExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.spoolDir)
	if err != nil {
		w.logger.Warn("failed to scan spool directory", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		w.handle(ctx, filepath.Join(w.spoolDir, entry.Name()))
	}
}

// handle processes a single spooled manifest and files it under processed or
// failed. Transient submission failures leave the file in place for the next
// sweep.
func (w *Watcher) handle(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		// Removed or renamed between the event and the sweep.
		return
	}
	logger := w.logger.With(logging.String("manifest_file", filepath.Base(path)))

	result, err := w.process(ctx, path)
	if err != nil {
		if errors.Is(err, services.ErrTransient) {
			logger.Warn("submission failed transiently, leaving manifest in spool", logging.Error(err))
			return
		}
		logger.Error("manifest rejected", logging.Error(err), logging.String(logging.FieldErrorKind, services.Kind(err)))
		w.file(logger, path, w.failedDir)
		return
	}

	logger.Info("manifest processed",
		logging.String(logging.FieldManifestID, result.manifestID),
		logging.String("outcome", string(result.outcome)))
	w.file(logger, path, w.processedDir)
}

type handleResult struct {
	manifestID string
	outcome    submit.Outcome
}

func (w *Watcher) process(ctx context.Context, path string) (handleResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return handleResult{}, services.Wrap(services.ErrTransient, "watch", "process", "read manifest file", err)
	}
	m, err := manifest.ParseXML(data)
	if err != nil {
		return handleResult{}, err
	}

	result, err := w.submitter.Submit(ctx, submit.Request{
		Manifest:     m,
		InputURI:     submit.InputURI(w.inputBucket, m),
		OutputPrefix: submit.OutputPrefix(w.outputBucket, m),
	})
	if err != nil {
		w.notify(ctx, notifications.EventJobFailed, m, notifications.Details{"error": err.Error()})
		return handleResult{}, err
	}

	if result.Skipped() {
		details := notifications.Details{"outcome": string(result.Outcome)}
		if result.Existing != nil {
			details["existing_status"] = string(result.Existing.Status)
		}
		w.notify(ctx, notifications.EventJobSkipped, m, details)
	} else {
		w.notify(ctx, notifications.EventJobConfigured, m, notifications.Details{
			"request_id":        result.RequestID,
			"variant_count":     len(result.Variants),
			"estimated_size_gb": result.EstimatedSizeGB,
		})
	}
	return handleResult{manifestID: m.ManifestID, outcome: result.Outcome}, nil
}

func (w *Watcher) notify(ctx context.Context, event notifications.Event, m *manifest.Manifest, details notifications.Details) {
	if err := w.notifier.Publish(ctx, event, m, details); err != nil {
		w.logger.Warn("notification delivery failed",
			logging.String("event", string(event)),
			logging.Error(err))
	}
}

// file moves a consumed manifest into dir, disambiguating name collisions
// with a timestamp suffix.
func (w *Watcher) file(logger *slog.Logger, path, dir string) {
	dest := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(dest)
		dest = fmt.Sprintf("%s.%d%s", strings.TrimSuffix(dest, ext), time.Now().UnixNano(), ext)
	}
	if err := os.Rename(path, dest); err != nil {
		logger.Warn("failed to move manifest", logging.String("destination", dest), logging.Error(err))
	}
}
