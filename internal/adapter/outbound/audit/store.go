// Package audit journals invocation outcomes to a durable SQLite-backed
// store (SPEC_FULL "Audit"). Outcomes are written synchronously from the
// result pass, so a slow disk adds its write time (bounded by a 5s
// timeout) to the caller's wait; a failed write is logged, not returned.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is a single auditable invocation outcome.
type Record struct {
	InvocationID string
	Namespace    string
	Identity     string
	Method       string
	// Outcome is one of "done", "failed", "cancelled", "discarded".
	Outcome    string
	ErrMessage string
	StartedAt  time.Time
	FinishedAt time.Time
}

// ErrDateRangeExceeded is returned by Query when the requested window is
// wider than the store is willing to scan in one call.
var ErrDateRangeExceeded = errors.New("audit: date range exceeds maximum of 30 days")

const maxQueryWindow = 30 * 24 * time.Hour

// Store persists invocation Records to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS invocation_audit (
	invocation_id TEXT PRIMARY KEY,
	namespace     TEXT NOT NULL,
	identity      TEXT NOT NULL,
	method        TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	err_message   TEXT NOT NULL DEFAULT '',
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invocation_audit_finished_at ON invocation_audit(finished_at);
`

// Append inserts or replaces records. A replace (rather than insert-only)
// tolerates a caller calling Append twice for the same invocation id,
// which a retried audit write after a transient disk error would do.
func (s *Store) Append(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("audit: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO invocation_audit
			(invocation_id, namespace, identity, method, outcome, err_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("audit: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.InvocationID, r.Namespace, r.Identity, r.Method, r.Outcome, r.ErrMessage,
			r.StartedAt.UTC().Format(time.RFC3339Nano), r.FinishedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("audit: insert record %s: %w", r.InvocationID, err)
		}
	}
	return tx.Commit()
}

// Query returns records whose FinishedAt falls within [start, end].
func (s *Store) Query(ctx context.Context, start, end time.Time) ([]Record, error) {
	if end.Sub(start) > maxQueryWindow {
		return nil, ErrDateRangeExceeded
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT invocation_id, namespace, identity, method, outcome, err_message, started_at, finished_at
		FROM invocation_audit
		WHERE finished_at >= ? AND finished_at <= ?
		ORDER BY finished_at ASC
	`, start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var started, finished string
		if err := rows.Scan(&r.InvocationID, &r.Namespace, &r.Identity, &r.Method, &r.Outcome, &r.ErrMessage, &started, &finished); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
