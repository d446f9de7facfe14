package queue

import (
	"context"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

// Store is durable local persistence for queued reports, keyed by LocalID.
// Every mutating call must be durable before it returns.
type Store interface {
	// Put inserts or fully replaces the record for its LocalID atomically.
	Put(ctx context.Context, rec *QueuedReport) error

	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, localID string) (*QueuedReport, error)

	// ListAll returns every record ordered by CreatedAt ascending.
	ListAll(ctx context.Context) ([]*QueuedReport, error)

	// Delete removes the record. It returns ErrNotDeletable if the stored
	// state is Syncing and ErrNotFound if no record exists.
	Delete(ctx context.Context, localID string) error

	Close() error
}

// Gateway submits a report to the remote authority. The token is stable per
// record (the LocalID) so a retry after an ambiguous failure cannot create a
// duplicate remote report. Failures should be returned as *GatewayError.
type Gateway interface {
	Submit(ctx context.Context, token string, payload report.Payload, attachments []report.Attachment) (remoteID string, err error)
}

// Connectivity reports whether the remote authority is currently reachable.
// The coordinator checks it before starting each submission; detection
// mechanics live in the app layer.
type Connectivity interface {
	Online() bool
}
