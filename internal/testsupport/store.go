package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/config"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/idempotency"
)

// MustOpenStore opens an idempotency.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *idempotency.Store {
	t.Helper()

	store, err := idempotency.Open(cfg.StorePath())
	if err != nil {
		t.Fatalf("idempotency.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRecord reserves a token and advances it to the requested status.
func SeedRecord(t testing.TB, store *idempotency.Store, manifestID, token string, status idempotency.Status) {
	t.Helper()

	ctx := context.Background()
	won, err := store.Reserve(ctx, manifestID, token, "v1", "", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("store.Reserve: %v", err)
	}
	if !won {
		t.Fatalf("token %s already reserved", token)
	}
	for _, step := range pathTo(status) {
		ok, err := store.UpdateStatus(ctx, token, step, "", "")
		if err != nil {
			t.Fatalf("store.UpdateStatus(%s): %v", step, err)
		}
		if !ok {
			t.Fatalf("transition to %s rejected", step)
		}
	}
}

// pathTo returns the transitions needed to reach status from PENDING.
func pathTo(status idempotency.Status) []idempotency.Status {
	switch status {
	case idempotency.StatusPending:
		return nil
	case idempotency.StatusSubmitted:
		return []idempotency.Status{idempotency.StatusSubmitted}
	case idempotency.StatusProgressing:
		return []idempotency.Status{idempotency.StatusSubmitted, idempotency.StatusProgressing}
	case idempotency.StatusComplete:
		return []idempotency.Status{idempotency.StatusSubmitted, idempotency.StatusProgressing, idempotency.StatusComplete}
	case idempotency.StatusError:
		return []idempotency.Status{idempotency.StatusError}
	default:
		return nil
	}
}
