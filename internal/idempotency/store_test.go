package idempotency

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func mustOpenStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "idempotency.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

const testTTL = 7 * 24 * time.Hour

func TestReserveFirstCallerWins(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	won, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !won {
		t.Fatal("first Reserve should win")
	}

	won, err = store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL)
	if err != nil {
		t.Fatalf("second Reserve: %v", err)
	}
	if won {
		t.Fatal("second Reserve on a live token must lose")
	}
}

func TestReserveConcurrentCallersExactlyOneWinner(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	const contenders = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			won, err := store.Reserve(ctx, "m-race", "token-race", "v1.0", "s3://out/m", testTTL)
			if err != nil {
				t.Errorf("Reserve: %v", err)
				return
			}
			if won {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("winners = %d, want exactly 1", got)
	}
}

func TestReserveReclaimsExpiredRecord(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	current := time.Now().UTC()
	store.now = func() time.Time { return current }

	if won, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL); err != nil || !won {
		t.Fatalf("initial Reserve = %v, %v", won, err)
	}

	// Within the TTL the token stays claimed.
	if won, _ := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL); won {
		t.Fatal("Reserve should lose while the record is live")
	}

	current = current.Add(testTTL + time.Hour)
	won, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL)
	if err != nil {
		t.Fatalf("Reserve after expiry: %v", err)
	}
	if !won {
		t.Fatal("Reserve should reclaim an expired token")
	}

	rec, err := store.Get(ctx, "token-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec == nil || rec.Status != StatusPending {
		t.Fatalf("reclaimed record = %+v, want fresh PENDING", rec)
	}
	if rec.OutputPrefix != "s3://out/m" {
		t.Fatalf("OutputPrefix = %q", rec.OutputPrefix)
	}
}

func TestReserveReclaimsWhenExpiryLandsOnWholeSecond(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	// Expiry comparisons run as string comparisons in SQL, so a stored
	// expiry with no fractional digits must still sort before a later
	// sub-second timestamp.
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	current := base.Add(-time.Second)
	store.now = func() time.Time { return current }

	if won, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", time.Second); err != nil || !won {
		t.Fatalf("initial Reserve = %v, %v", won, err)
	}

	current = base.Add(500 * time.Millisecond)
	won, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL)
	if err != nil {
		t.Fatalf("Reserve past whole-second expiry: %v", err)
	}
	if !won {
		t.Fatal("Reserve should reclaim a record that expired on a whole second")
	}
}

func TestGetHidesExpiredRecords(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	current := time.Now().UTC()
	store.now = func() time.Time { return current }

	if _, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", time.Hour); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	rec, err := store.Get(ctx, "token-a")
	if err != nil || rec == nil {
		t.Fatalf("Get live record = %v, %v", rec, err)
	}

	current = current.Add(2 * time.Hour)
	rec, err = store.Get(ctx, "token-a")
	if err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if rec != nil {
		t.Fatalf("expired record should read as absent, got %+v", rec)
	}
}

func TestGetUnknownTokenReturnsNil(t *testing.T) {
	store := mustOpenStore(t)
	rec, err := store.Get(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Fatalf("Get = %+v, want nil", rec)
	}
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	steps := []struct {
		status Status
		jobID  string
		want   bool
	}{
		{StatusComplete, "", false},          // PENDING cannot jump to COMPLETE
		{StatusSubmitted, "job-123", true},   // PENDING -> SUBMITTED
		{StatusSubmitted, "job-456", false},  // no self transition
		{StatusProgressing, "", true},        // SUBMITTED -> PROGRESSING
		{StatusComplete, "", true},           // PROGRESSING -> COMPLETE
		{StatusError, "", false},             // COMPLETE is terminal
	}
	for _, step := range steps {
		changed, err := store.UpdateStatus(ctx, "token-a", step.status, step.jobID, "")
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", step.status, err)
		}
		if changed != step.want {
			t.Fatalf("UpdateStatus(%s) = %v, want %v", step.status, changed, step.want)
		}
	}

	rec, err := store.Get(ctx, "token-a")
	if err != nil || rec == nil {
		t.Fatalf("Get: %v, %v", rec, err)
	}
	if rec.Status != StatusComplete {
		t.Fatalf("final status = %s, want COMPLETE", rec.Status)
	}
	if rec.JobID != "job-123" {
		t.Fatalf("JobID = %q, want job-123 preserved through later transitions", rec.JobID)
	}
}

func TestUpdateStatusUnknownTokenIsNoop(t *testing.T) {
	store := mustOpenStore(t)
	changed, err := store.UpdateStatus(context.Background(), "missing", StatusSubmitted, "job-1", "")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if changed {
		t.Fatal("UpdateStatus on a missing token should report false")
	}
}

func TestUpdateStatusRecordsErrorMessage(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := store.UpdateStatus(ctx, "token-a", StatusError, "", "input file unreadable"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	rec, err := store.Get(ctx, "token-a")
	if err != nil || rec == nil {
		t.Fatalf("Get: %v, %v", rec, err)
	}
	if rec.Status != StatusError || rec.ErrorMessage != "input file unreadable" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestPurgeExpired(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	current := time.Now().UTC()
	store.now = func() time.Time { return current }

	if _, err := store.Reserve(ctx, "m-1", "token-old", "v1.0", "s3://out/m", time.Hour); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := store.Reserve(ctx, "m-2", "token-new", "v1.0", "s3://out/m", testTTL); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	current = current.Add(2 * time.Hour)
	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}

	remaining, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Token != "token-new" {
		t.Fatalf("remaining = %+v, want only token-new", remaining)
	}
}

func TestGetByManifestID(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := store.Reserve(ctx, "m-1", "token-b", "v1.1", "s3://out/m", testTTL); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := store.Reserve(ctx, "m-2", "token-c", "v1.0", "s3://out/m", testTTL); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	records, err := store.GetByManifestID(ctx, "m-1")
	if err != nil {
		t.Fatalf("GetByManifestID: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
}

func TestStats(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Reserve(ctx, "m-1", "token-a", "v1.0", "s3://out/m", testTTL); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := store.Reserve(ctx, "m-2", "token-b", "v1.0", "s3://out/m", testTTL); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := store.UpdateStatus(ctx, "token-b", StatusSubmitted, "job-1", ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[StatusPending] != 1 || stats[StatusSubmitted] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}
