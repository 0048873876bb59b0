package submit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/idempotency"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/ladder"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/logging"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/manifest"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/mediaconvert"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
)

// Store is the reservation surface the orchestrator needs.
type Store interface {
	Get(ctx context.Context, token string) (*idempotency.Record, error)
	Reserve(ctx context.Context, manifestID, token, profileVersion, outputPrefix string, ttl time.Duration) (bool, error)
}

// Outcome classifies how a submission resolved.
type Outcome string

const (
	// OutcomeConfigured means this caller owns the job: the reservation was
	// won and the returned settings should be submitted.
	OutcomeConfigured Outcome = "configured"
	// OutcomeSkippedExisting means a live record already covers this
	// content, found on the fast-path check.
	OutcomeSkippedExisting Outcome = "skipped_existing"
	// OutcomeSkippedLostRace means a concurrent submitter won the
	// reservation between the check and the insert.
	OutcomeSkippedLostRace Outcome = "skipped_lost_race"
)

// Request is one submission attempt for a validated manifest.
type Request struct {
	Manifest     *manifest.Manifest
	InputURI     string
	OutputPrefix string
	// ForceReprocess bypasses the fast-path check so a COMPLETE record does
	// not short-circuit the rebuild. It never bypasses the reservation; if
	// the token is still live the submission loses the race as usual.
	ForceReprocess bool
}

// Result reports the resolved submission.
type Result struct {
	Outcome         Outcome
	RequestID       string
	Token           string
	Variants        []ladder.Variant
	Job             *mediaconvert.Job
	Existing        *idempotency.Record
	EstimatedSizeGB float64
}

// Skipped reports whether no new job should be submitted.
func (r *Result) Skipped() bool { return r.Outcome != OutcomeConfigured }

// Options configures the orchestrator from the pipeline settings.
type Options struct {
	ProfileVersion string
	EnableH265     bool
	EnableDASH     bool
	TTL            time.Duration
	QueueARN       string
	RoleARN        string
	Retry          services.RetryPolicy
}

// Orchestrator turns validated manifests into transcoding jobs with
// exactly-once semantics. It is safe for concurrent use.
type Orchestrator struct {
	store  Store
	opts   Options
	logger *slog.Logger
	newID  func() string
}

// New builds an orchestrator. A nil logger disables logging.
func New(store Store, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = services.DefaultRetryPolicy()
	}
	return &Orchestrator{
		store:  store,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "submit"),
		newID:  uuid.NewString,
	}
}

// Submit resolves one submission. The flow is check, build, reserve: the
// fast-path check keeps duplicate traffic cheap, and the conditional
// reservation is the authoritative gate. Store failures on the check degrade
// to "no record" because a duplicate job is recoverable and a blocked
// pipeline is not; failures on the reservation propagate as transient.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Result, error) {
	if req.Manifest == nil {
		return nil, services.Wrap(services.ErrValidation, "submit", "submit", "manifest is required", nil)
	}
	m := req.Manifest
	if err := m.Validate(); err != nil {
		return nil, err
	}

	requestID := o.newID()
	token := idempotency.Token(idempotency.TokenInput{
		ManifestID:     m.ManifestID,
		ChecksumMD5:    m.Mezzanine.ChecksumMD5,
		FileSizeBytes:  m.Mezzanine.FileSizeBytes,
		AudioLanguages: m.AudioLanguages(),
		ProfileVersion: o.opts.ProfileVersion,
	})
	log := o.logger.With(
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldManifestID, m.ManifestID),
		logging.String(logging.FieldToken, abbreviate(token)),
	)

	if !req.ForceReprocess {
		existing, err := o.store.Get(ctx, token)
		if err != nil {
			// Degrade to absent. The reservation below still guarantees
			// exactly-once; worst case we build settings we then discard.
			log.Warn("idempotency check failed, proceeding",
				logging.Error(err))
		} else if existing != nil && shortCircuits(existing.Status) {
			log.Info("skipping, live record exists",
				logging.String(logging.FieldStatus, string(existing.Status)),
				logging.String(logging.FieldJobID, existing.JobID))
			return &Result{
				Outcome:   OutcomeSkippedExisting,
				RequestID: requestID,
				Token:     token,
				Existing:  existing,
			}, nil
		}
	}

	variants := ladder.Build(m.Mezzanine.Width, m.Mezzanine.Height, o.opts.EnableH265)
	log.Info("bitrate ladder selected",
		logging.Int("variant_count", len(variants)),
		logging.String("source_resolution", m.Mezzanine.Resolution()))

	settings, err := mediaconvert.Build(mediaconvert.Request{
		Manifest:     m,
		Variants:     variants,
		InputURI:     req.InputURI,
		OutputPrefix: req.OutputPrefix,
		EnableHLS:    true,
		EnableDASH:   o.opts.EnableDASH,
	})
	if err != nil {
		return nil, err
	}

	var won bool
	err = o.opts.Retry.Do(ctx, func(ctx context.Context) error {
		var reserveErr error
		won, reserveErr = o.store.Reserve(ctx, m.ManifestID, token, o.opts.ProfileVersion, req.OutputPrefix, o.opts.TTL)
		return reserveErr
	})
	if err != nil {
		return nil, err
	}
	if !won {
		existing, getErr := o.store.Get(ctx, token)
		if getErr != nil {
			log.Warn("lost reservation, existing record unreadable", logging.Error(getErr))
		}
		log.Info("skipping, reservation lost to concurrent submitter")
		return &Result{
			Outcome:   OutcomeSkippedLostRace,
			RequestID: requestID,
			Token:     token,
			Existing:  existing,
		}, nil
	}

	log.Info("job configured",
		logging.Int("output_groups", len(settings.OutputGroups)))

	return &Result{
		Outcome:   OutcomeConfigured,
		RequestID: requestID,
		Token:     token,
		Variants:  variants,
		Job: &mediaconvert.Job{
			Queue:    o.opts.QueueARN,
			Role:     o.opts.RoleARN,
			Settings: settings,
			UserMetadata: map[string]string{
				"manifest_id":       m.ManifestID,
				"idempotency_token": token,
				"profile_version":   o.opts.ProfileVersion,
				"request_id":        requestID,
			},
			Priority: m.Priority,
		},
		EstimatedSizeGB: ladder.EstimateOutputSizeGB(variants, m.Episode.DurationSeconds, len(m.AudioTracks)),
	}, nil
}

// shortCircuits reports whether an existing record makes resubmission
// pointless. A PENDING record does not: it may be a crashed submitter, and
// the reservation decides whether the token is genuinely live.
func shortCircuits(status idempotency.Status) bool {
	switch status {
	case idempotency.StatusComplete, idempotency.StatusSubmitted, idempotency.StatusProgressing:
		return true
	default:
		return false
	}
}

// abbreviate shortens tokens for log lines; full tokens only ever appear in
// the store.
func abbreviate(token string) string {
	if len(token) <= 16 {
		return token
	}
	return token[:16] + "..."
}
