package queue

import (
	"time"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

// QueuedReport is a locally created, not-yet-confirmed civic issue report.
// The payload and attachment list are immutable after enqueue; only the sync
// bookkeeping fields change, and only through the Coordinator.
type QueuedReport struct {
	LocalID       string              `json:"local_id"`
	Payload       report.Payload      `json:"payload"`
	Attachments   []report.Attachment `json:"attachments,omitempty"`
	State         State               `json:"state"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
	SyncedAt      *time.Time          `json:"synced_at,omitempty"`
	RemoteID      string              `json:"remote_id,omitempty"`
	AttemptCount  int                 `json:"attempt_count"`
	LastError     string              `json:"last_error,omitempty"`
	LastErrorKind ErrorKind           `json:"last_error_kind,omitempty"`
}

// TotalSize returns the combined byte size of all attachments.
func (r *QueuedReport) TotalSize() int64 {
	var total int64
	for _, a := range r.Attachments {
		total += a.Size
	}
	return total
}

// Clone returns a deep copy so callers can hand records out without exposing
// coordinator-owned state to mutation.
func (r *QueuedReport) Clone() *QueuedReport {
	c := *r
	if r.Attachments != nil {
		c.Attachments = make([]report.Attachment, len(r.Attachments))
		copy(c.Attachments, r.Attachments)
	}
	if r.LastAttemptAt != nil {
		t := *r.LastAttemptAt
		c.LastAttemptAt = &t
	}
	if r.SyncedAt != nil {
		t := *r.SyncedAt
		c.SyncedAt = &t
	}
	return &c
}
