package idempotency

import "time"

// Status tracks a reservation through the transcoding lifecycle.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusSubmitted   Status = "SUBMITTED"
	StatusProgressing Status = "PROGRESSING"
	StatusComplete    Status = "COMPLETE"
	StatusError       Status = "ERROR"
)

// InFlight reports whether the status represents work that is reserved or
// running. An in-flight or complete record short-circuits resubmission.
func (s Status) InFlight() bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusProgressing:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// allowedPredecessors defines the legal state machine. A transition is
// applied only when the stored status is a listed predecessor, which makes
// concurrent updaters converge instead of fighting.
var allowedPredecessors = map[Status][]Status{
	StatusSubmitted:   {StatusPending},
	StatusProgressing: {StatusSubmitted},
	StatusComplete:    {StatusSubmitted, StatusProgressing},
	StatusError:       {StatusPending, StatusSubmitted, StatusProgressing},
}

// Record is one reservation row keyed by idempotency token.
type Record struct {
	Token          string
	ManifestID     string
	ProfileVersion string
	OutputPrefix   string
	Status         Status
	JobID          string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the record's TTL has lapsed relative to now.
// An expired record no longer blocks resubmission.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
