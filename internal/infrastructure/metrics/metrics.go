package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerOperations     *prometheus.CounterVec
	LedgerDuration       *prometheus.HistogramVec
	LedgerAmount         *prometheus.HistogramVec
	ConcurrencyConflicts *prometheus.CounterVec

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountsDeleted   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Accrual metrics
	AccrualRuns        *prometheus.CounterVec
	AccrualRunDuration prometheus.Histogram
	AccrualAccounts    *prometheus.CounterVec
	InterestPosted     prometheus.Counter
	InterestPostings   prometheus.Counter

	// Outbox metrics
	OutboxPublished *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them on reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_ledger_operations_total",
				Help: "Total ledger operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		LedgerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "growbucks_ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		LedgerAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "growbucks_ledger_amount_cents",
				Help:    "Deposit and withdrawal amounts in cents",
				Buckets: []float64{100, 500, 1000, 5000, 10000, 100000, 1000000},
			},
			[]string{"kind"},
		),
		ConcurrencyConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_concurrency_conflicts_total",
				Help: "Operations that gave up on a per-account lock or stale plan",
			},
			[]string{"operation"},
		),

		// Account metrics
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "growbucks_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "growbucks_accounts_deleted_total",
			Help: "Total number of accounts deleted",
		}),
		AccountOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Accrual metrics
		AccrualRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_accrual_runs_total",
				Help: "Batch accrual runs by result",
			},
			[]string{"result"},
		),
		AccrualRunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "growbucks_accrual_run_duration_seconds",
			Help:    "Duration of batch accrual runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		AccrualAccounts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_accrual_accounts_total",
				Help: "Accounts seen by batch accrual by outcome",
			},
			[]string{"outcome"},
		),
		InterestPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "growbucks_interest_posted_cents_total",
			Help: "Total interest posted in cents",
		}),
		InterestPostings: factory.NewCounter(prometheus.CounterOpts{
			Name: "growbucks_interest_postings_total",
			Help: "Total interest ledger entries written",
		}),

		// Outbox metrics
		OutboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_outbox_events_total",
				Help: "Outbox events handled by the publisher",
			},
			[]string{"event_type", "result"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "growbucks_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Cache metrics
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_cache_lookups_total",
				Help: "Account snapshot cache lookups by result",
			},
			[]string{"result"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "growbucks_rate_limit_hits_total",
				Help: "Requests rejected by the per-caller rate limiter",
			},
			[]string{"role"},
		),
	}
}
