package idempotency

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases are rejected rather than silently migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// timeLayout is RFC 3339 UTC with a fixed nine-digit fraction. Expiry
// comparisons happen as string comparisons inside SQL, so the stored form
// must sort lexicographically in chronological order. RFC3339Nano trims
// trailing fraction zeros and loses that property around whole seconds.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists reservations in SQLite. Every write happens through a
// single conditional statement, so concurrent submitters racing on the same
// token resolve inside the database rather than in application code.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the reservation database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "idempotency", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrTransient, "idempotency", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return services.Wrap(services.ErrTransient, "idempotency", "init schema", "check schema_version table", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return services.Wrap(services.ErrTransient, "idempotency", "init schema", "create schema", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return services.Wrap(services.ErrTransient, "idempotency", "init schema", "read schema version", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Ping verifies the database is reachable and writable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "SELECT 1"); err != nil {
		return services.Wrap(services.ErrTransient, "idempotency", "ping", "database unreachable", err)
	}
	return nil
}

// Get returns the live record for token, or nil when no record exists or
// the stored record has expired. Errors are transient store failures.
func (s *Store) Get(ctx context.Context, token string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT token, manifest_id, profile_version, output_prefix, status, job_id,
               error_message, created_at, updated_at, expires_at
        FROM idempotency_records WHERE token = ?`, token)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "idempotency", "get", "read record", err)
	}
	if rec.Expired(s.now().UTC()) {
		return nil, nil
	}
	return rec, nil
}

// GetByManifestID returns every record for a manifest, newest first. Expired
// records are included so operators can inspect history.
func (s *Store) GetByManifestID(ctx context.Context, manifestID string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT token, manifest_id, profile_version, output_prefix, status, job_id,
               error_message, created_at, updated_at, expires_at
        FROM idempotency_records WHERE manifest_id = ? ORDER BY created_at DESC`, manifestID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "idempotency", "get by manifest", "query records", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// List returns the most recent records up to limit.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT token, manifest_id, profile_version, output_prefix, status, job_id,
               error_message, created_at, updated_at, expires_at
        FROM idempotency_records ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "idempotency", "list", "query records", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Reserve attempts to claim the token with a fresh PENDING record expiring
// after ttl. It returns true when this caller won the reservation. A false
// return with nil error means a live record already holds the token: the
// submission is a duplicate or lost a race, which is control flow, not
// failure. Expired rows are reclaimed in the same statement, so a token
// whose TTL lapsed behaves exactly like an absent one.
func (s *Store) Reserve(ctx context.Context, manifestID, token, profileVersion, outputPrefix string, ttl time.Duration) (bool, error) {
	now := s.now().UTC()
	timestamp := now.Format(timeLayout)
	expires := now.Add(ttl).Format(timeLayout)

	res, err := s.db.ExecContext(ctx, `
        INSERT INTO idempotency_records (
            token, manifest_id, profile_version, output_prefix, status, job_id,
            error_message, created_at, updated_at, expires_at
        ) VALUES (?, ?, ?, ?, ?, '', '', ?, ?, ?)
        ON CONFLICT(token) DO UPDATE SET
            manifest_id = excluded.manifest_id,
            profile_version = excluded.profile_version,
            output_prefix = excluded.output_prefix,
            status = excluded.status,
            job_id = '',
            error_message = '',
            created_at = excluded.created_at,
            updated_at = excluded.updated_at,
            expires_at = excluded.expires_at
        WHERE idempotency_records.expires_at <= excluded.created_at`,
		token, manifestID, profileVersion, outputPrefix, StatusPending, timestamp, timestamp, expires)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "idempotency", "reserve", "conditional insert", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "idempotency", "reserve", "rows affected", err)
	}
	return affected > 0, nil
}

// UpdateStatus applies a lifecycle transition and returns whether a row
// changed. Illegal transitions and unknown tokens report false without
// error; status updates are best effort and never fail a submission.
func (s *Store) UpdateStatus(ctx context.Context, token string, status Status, jobID, errorMessage string) (bool, error) {
	predecessors, ok := allowedPredecessors[status]
	if !ok {
		return false, services.Wrap(services.ErrValidation, "idempotency", "update status",
			fmt.Sprintf("status %q is not a valid transition target", status), nil)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(predecessors)), ", ")
	args := []any{string(status), jobID, jobID, errorMessage, s.now().UTC().Format(timeLayout), token}
	for _, p := range predecessors {
		args = append(args, string(p))
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
        UPDATE idempotency_records
        SET status = ?,
            job_id = CASE WHEN ? = '' THEN job_id ELSE ? END,
            error_message = ?,
            updated_at = ?
        WHERE token = ? AND status IN (%s)`, placeholders), args...)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "idempotency", "update status", "apply transition", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "idempotency", "update status", "rows affected", err)
	}
	return affected > 0, nil
}

// PurgeExpired deletes records whose TTL lapsed and returns the count
// removed. Expiry is already enforced on read; this is maintenance to keep
// the table small.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM idempotency_records WHERE expires_at <= ?",
		s.now().UTC().Format(timeLayout))
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "idempotency", "purge expired", "delete records", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of records grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM idempotency_records GROUP BY status")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "idempotency", "stats", "query counts", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, services.Wrap(services.ErrTransient, "idempotency", "stats", "scan row", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var createdAt, updatedAt, expiresAt string
	err := row.Scan(&rec.Token, &rec.ManifestID, &rec.ProfileVersion, &rec.OutputPrefix,
		&rec.Status, &rec.JobID, &rec.ErrorMessage, &createdAt, &updatedAt, &expiresAt)
	if err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if rec.ExpiresAt, err = time.Parse(timeLayout, expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "idempotency", "scan", "decode record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "idempotency", "scan", "iterate records", err)
	}
	return records, nil
}
