package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arotkhata/arotkhata/internal/cashbook"
	"github.com/arotkhata/arotkhata/internal/customers"
	"github.com/arotkhata/arotkhata/internal/ledger"
	"github.com/arotkhata/arotkhata/internal/observability"
	"github.com/arotkhata/arotkhata/internal/reports"
	"github.com/arotkhata/arotkhata/internal/sacktypes"
	"github.com/arotkhata/arotkhata/internal/season"
	"github.com/arotkhata/arotkhata/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	SeasonHandler   *season.Handler
	CustomerHandler *customers.Handler
	SackTypeHandler *sacktypes.Handler
	LedgerHandler   *ledger.Handler
	CashbookHandler *cashbook.Handler
	ReportHandler   *reports.Handler
	JobHandler      *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router serving the ledger API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if params.SeasonHandler != nil {
			r.Route("/seasons", params.SeasonHandler.MountRoutes)
		}
		if params.CustomerHandler != nil {
			r.Route("/customers", params.CustomerHandler.MountRoutes)
		}
		if params.SackTypeHandler != nil {
			r.Route("/sack-types", params.SackTypeHandler.MountRoutes)
		}
		if params.LedgerHandler != nil {
			params.LedgerHandler.MountRoutes(r)
		}
		if params.CashbookHandler != nil {
			params.CashbookHandler.MountRoutes(r)
		}
		if params.ReportHandler != nil {
			params.ReportHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
