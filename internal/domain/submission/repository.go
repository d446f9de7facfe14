package submission

import "context"

// Repository is the persistence contract for accepted reports.
type Repository interface {
	// CreateOrGet inserts the submission, minting its tracking id, or returns
	// the existing row when the idempotency token was seen before. The bool
	// reports whether a new row was created.
	CreateOrGet(ctx context.Context, sub *Submission) (*Submission, bool, error)

	// GetByTrackingID returns the submission or ErrNotFound.
	GetByTrackingID(ctx context.Context, trackingID string) (*Submission, error)

	// List returns submissions newest first, optionally filtered by status.
	List(ctx context.Context, status Status, limit, offset int) ([]Submission, error)
}
