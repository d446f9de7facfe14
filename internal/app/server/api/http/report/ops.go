package report

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) submitOp() huma.Operation {
	return huma.Operation{
		OperationID: "reports-submit",
		Method:      http.MethodPost,
		Path:        "/api/v1/reports",
		Summary:     "Submit a citizen report",
		Description: "Accepts a civic issue report. Retrying with the same Idempotency-Key returns the original tracking id instead of creating a duplicate.",
		Tags:        []string{"reports"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "reports-find",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/{tracking_id}",
		Summary:     "Get a report by tracking id",
		Tags:        []string{"reports"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "reports-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports",
		Summary:     "List accepted reports",
		Tags:        []string{"reports"},
		Middlewares: h.middleware,
	}
}
