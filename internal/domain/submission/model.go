package submission

import (
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

// Status is the municipal processing state of an accepted report.
type Status string

const (
	StatusReceived   Status = "received"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

func (Status) Schema() huma.Schema {
	return huma.Schema{
		Type: "string",
		Enum: []any{
			string(StatusReceived),
			string(StatusInProgress),
			string(StatusResolved),
		},
		Description: "Processing status of an accepted report",
		Examples:    []any{StatusReceived},
	}
}

// Validate implements the huma.Validatable interface.
func (s Status) Validate() error {
	switch s {
	case StatusReceived, StatusInProgress, StatusResolved:
		return nil
	}
	return fmt.Errorf("invalid submission status: %s", s)
}

// String returns the wire representation of the status.
func (s Status) String() string {
	return string(s)
}

// AttachmentMeta is what the client discloses about an attached file: enough
// for deduplication, nothing of the content itself.
type AttachmentMeta struct {
	Size        int64  `json:"size"`
	Fingerprint string `json:"fingerprint"`
}

// Submission is an accepted citizen report on the authority side. The
// idempotency token is the client's local record id; its unique index is what
// makes retried submissions collapse into one row.
type Submission struct {
	ID               int64            `json:"id"`
	TrackingID       string           `json:"tracking_id"`
	IdempotencyToken string           `json:"-"`
	Payload          report.Payload   `json:"payload"`
	Attachments      []AttachmentMeta `json:"attachments,omitempty"`
	Status           Status           `json:"status"`
	ReceivedAt       time.Time        `json:"received_at"`
}
