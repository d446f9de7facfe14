package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const serviceName = "citizenconnect"

// Handler answers the reachability probe that offline clients poll to decide
// whether starting a sync is worth it.
type Handler struct {
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.checkOp(), h.check)
}

func (h *Handler) check(_ context.Context, _ *checkInput) (*checkOutput, error) {
	h.log.Debug("connectivity probe received")

	return &checkOutput{
		Body: checkResponse{
			Status:  "OK",
			Service: serviceName,
		},
	}, nil
}
