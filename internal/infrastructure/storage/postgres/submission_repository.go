package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/submission"
)

type SubmissionRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSubmissionRepository(pool *pgxpool.Pool, log *slog.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		pool: pool,
		log:  log.With("component", "submission_repository"),
	}
}

// CreateOrGet inserts the submission, minting a tracking id from the yearly
// sequence, or returns the existing row when the idempotency token was seen
// before. The unique index on idempotency_token makes the race between two
// identical retries harmless: exactly one insert wins.
func (r *SubmissionRepository) CreateOrGet(ctx context.Context, sub *submission.Submission) (*submission.Submission, bool, error) {
	payloadJSON, err := json.Marshal(sub.Payload)
	if err != nil {
		return nil, false, fmt.Errorf("serialize payload: %w", err)
	}
	attachmentsJSON, err := json.Marshal(sub.Attachments)
	if err != nil {
		return nil, false, fmt.Errorf("serialize attachments: %w", err)
	}

	const insert = `
		INSERT INTO submissions (idempotency_token, tracking_id, payload, attachments, status)
		VALUES ($1,
		        'CIV-' || to_char(NOW(), 'YYYY') || '-' || lpad(nextval('submissions_tracking_seq')::text, 6, '0'),
		        $2, $3, $4)
		ON CONFLICT (idempotency_token) DO NOTHING
		RETURNING id, tracking_id, received_at`

	created := &submission.Submission{
		IdempotencyToken: sub.IdempotencyToken,
		Payload:          sub.Payload,
		Attachments:      sub.Attachments,
		Status:           sub.Status,
	}

	err = r.pool.QueryRow(ctx, insert,
		sub.IdempotencyToken, payloadJSON, attachmentsJSON, sub.Status.String(),
	).Scan(&created.ID, &created.TrackingID, &created.ReceivedAt)

	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.log.Error("failed to insert submission", "token", sub.IdempotencyToken, "error", err)
		return nil, false, fmt.Errorf("insert submission: %w", err)
	}

	// Token already present; hand back the original row.
	existing, err := r.getByToken(ctx, sub.IdempotencyToken)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *SubmissionRepository) getByToken(ctx context.Context, token string) (*submission.Submission, error) {
	const query = `
		SELECT id, tracking_id, idempotency_token, payload, attachments, status, received_at
		FROM submissions
		WHERE idempotency_token = $1`

	sub, err := r.scanSubmission(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submission.ErrNotFound
		}
		r.log.Error("failed to get submission by token", "token", token, "error", err)
		return nil, fmt.Errorf("get submission by token: %w", err)
	}
	return sub, nil
}

func (r *SubmissionRepository) GetByTrackingID(ctx context.Context, trackingID string) (*submission.Submission, error) {
	const query = `
		SELECT id, tracking_id, idempotency_token, payload, attachments, status, received_at
		FROM submissions
		WHERE tracking_id = $1`

	sub, err := r.scanSubmission(r.pool.QueryRow(ctx, query, trackingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submission.ErrNotFound
		}
		r.log.Error("failed to get submission", "tracking_id", trackingID, "error", err)
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

func (r *SubmissionRepository) List(ctx context.Context, status submission.Status, limit, offset int) ([]submission.Submission, error) {
	query := `
		SELECT id, tracking_id, idempotency_token, payload, attachments, status, received_at
		FROM submissions`
	args := []interface{}{}
	argIndex := 1

	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, status.String())
		argIndex++
	}

	query += " ORDER BY received_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list submissions", "error", err)
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []submission.Submission
	for rows.Next() {
		sub, err := r.scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, *sub)
	}

	return subs, rows.Err()
}

func (r *SubmissionRepository) scanSubmission(row interface {
	Scan(dest ...interface{}) error
}) (*submission.Submission, error) {
	var (
		sub             submission.Submission
		payloadJSON     []byte
		attachmentsJSON []byte
		status          string
	)

	err := row.Scan(&sub.ID, &sub.TrackingID, &sub.IdempotencyToken,
		&payloadJSON, &attachmentsJSON, &status, &sub.ReceivedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payloadJSON, &sub.Payload); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	if err := json.Unmarshal(attachmentsJSON, &sub.Attachments); err != nil {
		return nil, fmt.Errorf("parse attachments: %w", err)
	}
	sub.Status = submission.Status(status)

	return &sub, nil
}
