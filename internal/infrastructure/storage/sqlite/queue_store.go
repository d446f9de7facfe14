package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

// Put inserts or fully replaces the record for its local id in one statement.
func (s *Storage) Put(ctx context.Context, rec *queue.QueuedReport) error {
	payloadJSON, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("serialize payload: %w", err)
	}
	attachmentsJSON, err := json.Marshal(rec.Attachments)
	if err != nil {
		return fmt.Errorf("serialize attachments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO queued_reports (local_id, payload, attachments, state, created_at,
		                            last_attempt_at, synced_at, remote_id,
		                            attempt_count, last_error, last_error_kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(local_id) DO UPDATE SET
			payload = excluded.payload,
			attachments = excluded.attachments,
			state = excluded.state,
			last_attempt_at = excluded.last_attempt_at,
			synced_at = excluded.synced_at,
			remote_id = excluded.remote_id,
			attempt_count = excluded.attempt_count,
			last_error = excluded.last_error,
			last_error_kind = excluded.last_error_kind
	`, rec.LocalID, payloadJSON, attachmentsJSON, rec.State.String(),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		formatTimePtr(rec.LastAttemptAt), formatTimePtr(rec.SyncedAt),
		rec.RemoteID, rec.AttemptCount, rec.LastError, string(rec.LastErrorKind))

	if err != nil {
		return fmt.Errorf("save queued report: %w", err)
	}
	return nil
}

// Get returns the record or queue.ErrNotFound.
func (s *Storage) Get(ctx context.Context, localID string) (*queue.QueuedReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT local_id, payload, attachments, state, created_at,
		       last_attempt_at, synced_at, remote_id,
		       attempt_count, last_error, last_error_kind
		FROM queued_reports
		WHERE local_id = ?
	`, localID)

	rec, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, queue.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load queued report: %w", err)
	}
	return rec, nil
}

// ListAll returns every record ordered by creation time ascending.
func (s *Storage) ListAll(ctx context.Context) ([]*queue.QueuedReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT local_id, payload, attachments, state, created_at,
		       last_attempt_at, synced_at, remote_id,
		       attempt_count, last_error, last_error_kind
		FROM queued_reports
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list queued reports: %w", err)
	}
	defer rows.Close()

	var recs []*queue.QueuedReport
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queued report: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list queued reports: %w", err)
	}
	return recs, nil
}

// Delete removes the record unless it is mid-sync. The state check and the
// delete run in one transaction so a concurrent transition cannot slip in
// between them.
func (s *Storage) Delete(ctx context.Context, localID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var state string
	err = tx.QueryRowContext(ctx,
		"SELECT state FROM queued_reports WHERE local_id = ?", localID).Scan(&state)
	if err == sql.ErrNoRows {
		return queue.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load queued report state: %w", err)
	}
	if queue.State(state) == queue.StateSyncing {
		return queue.ErrNotDeletable
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM queued_reports WHERE local_id = ?", localID); err != nil {
		return fmt.Errorf("delete queued report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*queue.QueuedReport, error) {
	var (
		rec             queue.QueuedReport
		payloadJSON     string
		attachmentsJSON string
		state           string
		kind            string
		createdAt       string
		lastAttemptAt   sql.NullString
		syncedAt        sql.NullString
	)

	err := row.Scan(&rec.LocalID, &payloadJSON, &attachmentsJSON, &state, &createdAt,
		&lastAttemptAt, &syncedAt, &rec.RemoteID,
		&rec.AttemptCount, &rec.LastError, &kind)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(payloadJSON), &rec.Payload); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	var attachments []report.Attachment
	if err := json.Unmarshal([]byte(attachmentsJSON), &attachments); err != nil {
		return nil, fmt.Errorf("parse attachments: %w", err)
	}
	rec.Attachments = attachments
	rec.State = queue.State(state)
	rec.LastErrorKind = queue.ErrorKind(kind)

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.LastAttemptAt, err = parseTimePtr(lastAttemptAt); err != nil {
		return nil, fmt.Errorf("parse last_attempt_at: %w", err)
	}
	if rec.SyncedAt, err = parseTimePtr(syncedAt); err != nil {
		return nil, fmt.Errorf("parse synced_at: %w", err)
	}

	return &rec, nil
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimePtr(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
