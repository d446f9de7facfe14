package report

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	reportdomain "github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/submission"
)

type Handler struct {
	service    submission.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service submission.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.submitOp(), h.submit)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.listOp(), h.list)
}

func (h *Handler) submit(ctx context.Context, input *submitInput) (*submitOutput, error) {
	payload := reportdomain.Payload{
		Title:       input.Body.Title,
		Category:    input.Body.Category,
		Description: input.Body.Description,
		Location:    input.Body.Location,
		Latitude:    input.Body.Latitude,
		Longitude:   input.Body.Longitude,
		Priority:    input.Body.Priority,
		Anonymous:   input.Body.Anonymous,
	}

	var attachments []submission.AttachmentMeta
	for _, a := range input.Body.Attachments {
		attachments = append(attachments, submission.AttachmentMeta{
			Size:        a.Size,
			Fingerprint: a.Fingerprint,
		})
	}

	sub, created, err := h.service.Submit(ctx, input.IdempotencyKey, payload, attachments)
	if err != nil {
		if errors.Is(err, reportdomain.ErrInvalidPayload) || errors.Is(err, submission.ErrTokenMissing) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	return &submitOutput{
		Status: status,
		Body: submitResponse{
			TrackingID: sub.TrackingID,
			Status:     sub.Status,
			ReceivedAt: sub.ReceivedAt,
		},
	}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*findOutput, error) {
	sub, err := h.service.GetByTrackingID(ctx, input.TrackingID)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			return nil, huma.Error404NotFound("no report with tracking id " + input.TrackingID)
		}
		return nil, err
	}

	return &findOutput{Body: *sub}, nil
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	if input.Status != "" {
		if err := input.Status.Validate(); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
	}

	subs, err := h.service.List(ctx, input.Status, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &listOutput{
		Body: listResponse{
			Submissions: subs,
			Count:       len(subs),
		},
	}, nil
}
