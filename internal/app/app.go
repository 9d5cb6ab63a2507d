// Package app wires configuration, storage and use cases into the pieces the
// binaries run.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/growbucks/internal/adapter/http"
	"github.com/iho/growbucks/internal/adapter/http/handler"
	"github.com/iho/growbucks/internal/adapter/http/middleware"
	"github.com/iho/growbucks/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/growbucks/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/growbucks/internal/adapter/repository/redis"
	"github.com/iho/growbucks/internal/infrastructure/auth"
	"github.com/iho/growbucks/internal/infrastructure/config"
	"github.com/iho/growbucks/internal/infrastructure/eventpublisher"
	"github.com/iho/growbucks/internal/infrastructure/metrics"
	"github.com/iho/growbucks/internal/infrastructure/postgres"
	"github.com/iho/growbucks/internal/infrastructure/redis"
	"github.com/iho/growbucks/internal/usecase"
)

// App holds the shared dependencies of the server, worker and CLI.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	Pool  *pgxpool.Pool
	Redis *goredis.Client

	OutboxRepo       usecase.OutboxRepository
	IdempotencyStore usecase.IdempotencyStore

	Accounts       *usecase.AccountUseCase
	Ledger         *usecase.LedgerUseCase
	Entries        *usecase.EntryUseCase
	Reconciliation *usecase.ReconciliationUseCase
	Accrual        *usecase.AccrualUseCase

	// RateLimiter is nil when RATE_LIMIT_RPS is zero.
	RateLimiter *middleware.RateLimiter

	stopSweeps context.CancelFunc
}

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTimeout   = 10 * time.Minute
)

// Policy maps configured limits onto the use case policy.
func Policy(cfg *config.Config) usecase.Policy {
	return usecase.Policy{
		MaxAmountCents:       cfg.MaxAmountCents,
		MinDailyRate:         cfg.MinDailyRate,
		MaxDailyRate:         cfg.MaxDailyRate,
		DefaultDailyRate:     cfg.DefaultDailyRate,
		MaxAccountsPerParent: cfg.MaxAccountsPerParent,
		Location:             cfg.Location(),
	}
}

type repositories struct {
	tx       usecase.TransactionManager
	accounts usecase.AccountRepository
	entries  usecase.EntryRepository
	outbox   usecase.OutboxRepository
	ledger   usecase.LedgerRepository
	runs     usecase.InterestRunRepository
}

// New opens the configured storage and, when REDIS_URL is set, Redis, then builds
// every use case. m may be nil.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (*App, error) {
	a := &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
		stopSweeps: func() {},
	}

	var repos repositories
	if cfg.UsesPostgres() {
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")

		a.Pool = pool
		repos = repositories{
			tx:       postgresRepo.NewTxManager(pool, cfg.LockTimeout),
			accounts: postgresRepo.NewAccountRepository(pool),
			entries:  postgresRepo.NewEntryRepository(pool),
			outbox:   postgresRepo.NewOutboxRepository(pool),
			ledger:   postgresRepo.NewLedgerRepository(pool),
			runs:     postgresRepo.NewInterestRunRepository(pool),
		}
	} else {
		store := memory.NewStore().WithLockTimeout(cfg.LockTimeout)
		logger.Warn().Msg("using in-memory storage, data is lost on exit")

		repos = repositories{
			tx:       memory.NewTxManager(store),
			accounts: memory.NewAccountRepository(store),
			entries:  memory.NewEntryRepository(store),
			outbox:   memory.NewOutboxRepository(store),
			ledger:   memory.NewLedgerRepository(store),
			runs:     memory.NewInterestRunRepository(store),
		}
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.Redis = client
		logger.Info().Msg("connected to redis")
	}

	policy := Policy(cfg)
	idGen := postgresRepo.NewULIDGenerator()

	a.OutboxRepo = repos.outbox
	a.Accounts = usecase.NewAccountUseCase(repos.tx, repos.accounts, repos.outbox, idGen, policy, m, logger)
	a.Ledger = usecase.NewLedgerUseCase(repos.tx, repos.accounts, repos.entries, repos.outbox, idGen, policy, m, logger)
	if a.Pool != nil {
		a.Ledger.WithRetrier(postgresRepo.NewRetrier(logger))
	}
	a.Entries = usecase.NewEntryUseCase(repos.entries, policy)
	a.Reconciliation = usecase.NewReconciliationUseCase(repos.accounts, repos.entries, repos.ledger)
	a.Accrual = usecase.NewAccrualUseCase(repos.accounts, repos.runs, a.Ledger, idGen, policy, usecase.AccrualOptions{
		Workers:     cfg.AccrualWorkers,
		MaxAttempts: cfg.AccrualMaxAttempts,
	}, m, logger)

	if a.Redis != nil {
		cache := redisRepo.NewAccountCache(a.Redis)
		a.Accounts.WithCache(cache, cfg.SnapshotCacheTTL)
		a.Ledger.WithCache(cache)
		a.IdempotencyStore = redisRepo.NewIdempotencyStore(a.Redis)
	}

	if cfg.RateLimitRPS > 0 {
		a.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

		sweepCtx, cancel := context.WithCancel(context.Background())
		a.stopSweeps = cancel
		go a.RateLimiter.RunSweeper(sweepCtx, limiterSweepInterval, limiterIdleTimeout)
	}

	return a, nil
}

// Close releases the connections opened by New.
func (a *App) Close() {
	a.stopSweeps()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// Router builds the HTTP API. metricsHandler is mounted at /metrics when non-nil.
func (a *App) Router(metricsHandler http.Handler) http.Handler {
	checks := map[string]handler.Pinger{}
	if a.Pool != nil {
		checks["postgres"] = a.Pool
	}
	if a.Redis != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		})
	}

	var authenticator func(http.Handler) http.Handler
	if a.Config.AuthEnabled {
		authenticator = middleware.Authenticate(auth.NewJWTManager(a.Config.JWTSecret, a.Config.JWTExpiry), a.Metrics)
	} else {
		a.Logger.Warn().Msg("token auth disabled, trusting caller headers")
	}

	return httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(a.Accounts),
		LedgerHandler:         handler.NewLedgerHandler(a.Ledger, a.Accounts, a.Entries),
		EntryHandler:          handler.NewEntryHandler(a.Entries, a.Accounts),
		AccrualHandler:        handler.NewAccrualHandler(a.Accrual),
		ReconciliationHandler: handler.NewReconciliationHandler(a.Reconciliation, a.Accounts),
		HealthHandler:         handler.NewHealthHandler(checks),
		IdempotencyStore:      a.IdempotencyStore,
		IdempotencyTTL:        a.Config.IdempotencyTTL,
		Authenticator:         authenticator,
		CronSecret:            a.Config.CronSecret,
		RateLimiter:           a.RateLimiter,
		Logger:                a.Logger,
		Metrics:               a.Metrics,
		MetricsHandler:        metricsHandler,
	})
}

// OutboxRelay builds the outbox relay. Without AMQP_URL events go to the log.
// The returned close func releases the broker connection.
func (a *App) OutboxRelay() (*eventpublisher.EventPublisher, func(), error) {
	var (
		publisher usecase.EventPublisher
		closeFn   = func() {}
	)

	if a.Config.AMQPURL != "" {
		amqpPublisher, err := eventpublisher.NewAMQPPublisher(a.Config.AMQPURL, a.Config.AMQPExchange)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to amqp: %w", err)
		}
		publisher = amqpPublisher
		closeFn = amqpPublisher.Close
		a.Logger.Info().Str("exchange", a.Config.AMQPExchange).Msg("publishing outbox events to amqp")
	} else {
		publisher = eventpublisher.NewLogPublisher(a.Logger)
		a.Logger.Warn().Msg("AMQP_URL not set, outbox events are only logged")
	}

	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: a.OutboxRepo,
		Publisher:  publisher,
		Metrics:    a.Metrics,
		Logger:     a.Logger,
		Interval:   a.Config.OutboxInterval,
		Retention:  a.Config.OutboxRetention,
	})

	return relay, closeFn, nil
}
