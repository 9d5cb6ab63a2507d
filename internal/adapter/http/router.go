package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/growbucks/internal/adapter/http/handler"
	"github.com/iho/growbucks/internal/adapter/http/middleware"
	"github.com/iho/growbucks/internal/infrastructure/metrics"
	"github.com/iho/growbucks/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	LedgerHandler         *handler.LedgerHandler
	EntryHandler          *handler.EntryHandler
	AccrualHandler        *handler.AccrualHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// Authenticator resolves the caller for /api/v1. Nil falls back to
	// middleware.HeaderCaller.
	Authenticator func(http.Handler) http.Handler
	CronSecret    string

	// RateLimiter throttles /api/v1 per caller when set.
	RateLimiter *middleware.RateLimiter

	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics(cfg.Metrics))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// Scheduler-facing endpoints
	r.Route("/internal", func(r chi.Router) {
		r.Use(middleware.CronSecret(cfg.CronSecret, cfg.Metrics))

		r.Post("/accrual/run", cfg.AccrualHandler.Run)
		r.Get("/accrual/runs", cfg.AccrualHandler.Runs)
		r.Get("/reconciliation", cfg.ReconciliationHandler.Report)
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		authenticator := cfg.Authenticator
		if authenticator == nil {
			authenticator = middleware.HeaderCaller
		}
		r.Use(authenticator)

		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency runs after authentication so keys are scoped per caller
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Patch("/{id}", cfg.AccountHandler.Update)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
			r.Get("/{id}/balance", cfg.AccountHandler.LiveBalance)
			r.Get("/{id}/projection", cfg.AccountHandler.Projection)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/interest", cfg.EntryHandler.InterestSummary)
			r.Get("/{id}/reconcile", cfg.ReconciliationHandler.Account)
			r.Post("/{id}/deposits", cfg.LedgerHandler.Deposit)
			r.Post("/{id}/withdrawals", cfg.LedgerHandler.Withdraw)
		})

		// Pending withdrawals
		r.Get("/pending", cfg.EntryHandler.Pending)
		r.Post("/entries/{id}/resolve", cfg.LedgerHandler.Resolve)
	})

	return r
}
