package submission

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

const defaultListLimit = 50

// Service defines the business logic for submission operations.
type Service struct {
	repo Repository
	log  *slog.Logger
}

type Servicer interface {
	Submit(ctx context.Context, token string, payload report.Payload, attachments []AttachmentMeta) (*Submission, bool, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*Submission, error)
	List(ctx context.Context, status Status, limit, offset int) ([]Submission, error)
}

// NewService creates a new submission service.
func NewService(repo Repository, log *slog.Logger) Servicer {
	return &Service{
		repo: repo,
		log:  log.With("component", "submission_service"),
	}
}

// Submit accepts a citizen report. Submitting the same idempotency token
// twice returns the original submission with its original tracking id, so a
// client retrying after an ambiguous failure never creates a duplicate.
func (s *Service) Submit(ctx context.Context, token string, payload report.Payload, attachments []AttachmentMeta) (*Submission, bool, error) {
	if strings.TrimSpace(token) == "" {
		return nil, false, ErrTokenMissing
	}
	if err := payload.Validate(); err != nil {
		return nil, false, err
	}
	if len(attachments) > report.MaxAttachments {
		return nil, false, fmt.Errorf("%w: at most %d attachments", report.ErrInvalidPayload, report.MaxAttachments)
	}

	sub := &Submission{
		IdempotencyToken: token,
		Payload:          payload,
		Attachments:      attachments,
		Status:           StatusReceived,
	}

	stored, created, err := s.repo.CreateOrGet(ctx, sub)
	if err != nil {
		s.log.Error("failed to store submission", "token", token, "error", err)
		return nil, false, fmt.Errorf("store submission: %w", err)
	}

	if created {
		s.log.Info("submission accepted",
			"tracking_id", stored.TrackingID,
			"category", stored.Payload.Category,
			"priority", stored.Payload.Priority,
		)
	} else {
		s.log.Info("duplicate submission deduplicated",
			"tracking_id", stored.TrackingID,
			"token", token,
		)
	}

	return stored, created, nil
}

// GetByTrackingID returns a submission by its citizen-facing tracking id.
func (s *Service) GetByTrackingID(ctx context.Context, trackingID string) (*Submission, error) {
	sub, err := s.repo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// List returns submissions newest first.
func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]Submission, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	subs, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		s.log.Error("failed to list submissions", "error", err)
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}
