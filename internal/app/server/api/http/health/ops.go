package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) checkOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Intake service health",
		Description: "Answers the reachability probe clients poll before syncing queued reports",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}
