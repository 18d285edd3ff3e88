package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/http/handler"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/http/middleware"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/metrics"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EntryHandler     *handler.EntryHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	r.Use(middleware.Recovery)

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idem := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idem.Wrap)
		}

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Create)
			r.Get("/", cfg.EntryHandler.List)
			r.Post("/batch", cfg.EntryHandler.Batch)
			r.Get("/recurrence/{id}", cfg.EntryHandler.ListByRecurrence)
			r.Put("/{id}", cfg.EntryHandler.Update)
			r.Delete("/{id}", cfg.EntryHandler.Delete)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/balance", cfg.LedgerHandler.Balance)
			r.Post("/recalculate", cfg.LedgerHandler.Recalculate)
			r.Post("/integrity", cfg.LedgerHandler.Integrity)
			r.Get("/cache/stats", cfg.LedgerHandler.CacheStats)
		})
	})

	return r
}
