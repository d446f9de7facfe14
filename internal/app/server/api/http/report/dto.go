package report

import (
	"time"

	reportdomain "github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/submission"
)

type submitInput struct {
	IdempotencyKey string `header:"Idempotency-Key" required:"true" doc:"Client-generated token that makes retried submissions safe"`
	Body           submitBody
}

type submitBody struct {
	Title       string                 `json:"title" maxLength:"120" doc:"Short summary of the issue"`
	Category    reportdomain.Category  `json:"category"`
	Description string                 `json:"description" maxLength:"4000"`
	Location    string                 `json:"location,omitempty" maxLength:"300"`
	Latitude    *float64               `json:"latitude,omitempty"`
	Longitude   *float64               `json:"longitude,omitempty"`
	Priority    reportdomain.Priority  `json:"priority"`
	Anonymous   bool                   `json:"anonymous,omitempty"`
	Attachments []attachmentBody       `json:"attachments,omitempty" maxItems:"3"`
}

type attachmentBody struct {
	Size        int64  `json:"size" minimum:"0"`
	Fingerprint string `json:"fingerprint" doc:"SHA-256 of the attachment content"`
}

type submitOutput struct {
	Status int
	Body   submitResponse
}

type submitResponse struct {
	TrackingID string            `json:"tracking_id" example:"CIV-2026-000123"`
	Status     submission.Status `json:"status"`
	ReceivedAt time.Time         `json:"received_at"`
}

type findInput struct {
	TrackingID string `path:"tracking_id" example:"CIV-2026-000123"`
}

type findOutput struct {
	Body submission.Submission
}

type listInput struct {
	Status submission.Status `query:"status" required:"false" doc:"Filter by processing status"`
	Limit  int               `query:"limit" required:"false" minimum:"1" maximum:"200"`
	Offset int               `query:"offset" required:"false" minimum:"0"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Submissions []submission.Submission `json:"submissions"`
	Count       int                     `json:"count"`
}
