// POST /api/v1/reports                # Submit a report (idempotent)
// GET  /api/v1/reports                # List accepted reports
// GET  /api/v1/reports/{tracking_id}  # Get a report by tracking id
// GET  /api/v1/health                 # Health check

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	healthAPI "github.com/Civic-3-io/citizen-connect-ind/internal/app/server/api/http/health"
	"github.com/Civic-3-io/citizen-connect-ind/internal/app/server/api/http/middleware"
	"github.com/Civic-3-io/citizen-connect-ind/internal/app/server/api/http/middleware/logger"
	reportAPI "github.com/Civic-3-io/citizen-connect-ind/internal/app/server/api/http/report"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/submission"
	"github.com/Civic-3-io/citizen-connect-ind/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health *healthAPI.Handler
	Report *reportAPI.Handler
}

// New builds a *chi.Mux with all operations registered through huma.
func New(storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("CitizenConnect API", "1.0.0")
	API := humachi.New(mux, config)

	h := handlers(storage, log)
	h.Health.SetupRoutes(API)
	h.Report.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	submissionRepo := postgres.NewSubmissionRepository(storage.Pool(), log)
	submissionService := submission.NewService(submissionRepo, log)
	middlewares.Add(loggerMW.Middleware())
	reportHandler := reportAPI.NewHandler(submissionService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Report: reportHandler,
	}
}
