package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/metrics"
)

const (
	// DefaultAccrualWorkers bounds how many accounts are accrued in parallel.
	DefaultAccrualWorkers = 8

	// DefaultAccrualAttempts is how often one account is recomputed after a conflict.
	DefaultAccrualAttempts = 3
)

// AccrualUseCase runs the daily batch accrual.
type AccrualUseCase struct {
	accountRepo AccountRepository
	runRepo     InterestRunRepository
	poster      InterestPoster
	idGen       IDGenerator
	policy      Policy
	workers     int
	maxAttempts int
	pageSize    int
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// AccrualOptions tunes the batch.
type AccrualOptions struct {
	Workers     int
	MaxAttempts int
	PageSize    int
}

// NewAccrualUseCase creates a new AccrualUseCase. runRepo may be nil.
func NewAccrualUseCase(
	accountRepo AccountRepository,
	runRepo InterestRunRepository,
	poster InterestPoster,
	idGen IDGenerator,
	policy Policy,
	opts AccrualOptions,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *AccrualUseCase {
	if opts.Workers <= 0 {
		opts.Workers = DefaultAccrualWorkers
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultAccrualAttempts
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultAccrualPageSize
	}

	return &AccrualUseCase{
		accountRepo: accountRepo,
		runRepo:     runRepo,
		poster:      poster,
		idGen:       idGen,
		policy:      policy,
		workers:     opts.Workers,
		maxAttempts: opts.MaxAttempts,
		pageSize:    opts.PageSize,
		metrics:     metrics,
		logger:      logger.With().Str("component", "accrual").Logger(),
	}
}

// AccountError is one account's failure within a batch run.
type AccountError struct {
	AccountID string
	Err       error
}

func (e AccountError) Error() string {
	return fmt.Sprintf("account %s: %v", e.AccountID, e.Err)
}

// BatchResult summarizes a batch accrual run.
type BatchResult struct {
	RunID         string
	RunDate       time.Time
	Processed     int
	Skipped       int
	Postings      int
	TotalInterest int64
	Errors        []AccountError
}

// RunDailyAccrual accrues every eligible account as of now. Each account is handled
// independently: failures are collected in the result and never stop the batch.
// Running it again on the same day is a no-op for accounts already accrued. An error
// is returned only when the eligible accounts cannot be listed; the partial result
// is returned with it.
func (uc *AccrualUseCase) RunDailyAccrual(ctx context.Context, now time.Time) (*BatchResult, error) {
	started := time.Now()
	loc := uc.policy.location()

	result := &BatchResult{
		RunID:   uc.idGen.Generate(),
		RunDate: domain.StartOfDay(now, loc),
	}

	log := uc.logger.With().Str("run_id", result.RunID).Time("run_date", result.RunDate).Logger()
	log.Info().Msg("accrual run started")

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(uc.workers)

	record := func(account *domain.Account, plan domain.AccrualPlan, err error) {
		mu.Lock()
		defer mu.Unlock()

		switch {
		case err != nil:
			result.Errors = append(result.Errors, AccountError{AccountID: account.ID, Err: err})
		case plan.IsEmpty():
			result.Skipped++
		default:
			result.Processed++
			result.Postings += len(plan.Postings)
			result.TotalInterest += plan.TotalInterest()
		}
	}

	var listErr error
	afterID := ""

	for {
		accounts, err := uc.accountRepo.ListEligibleForAccrual(ctx, result.RunDate, afterID, uc.pageSize)
		if err != nil {
			listErr = fmt.Errorf("list eligible accounts: %w", domain.StorageFailure(err))
			break
		}

		for _, account := range accounts {
			g.Go(func() error {
				plan, err := uc.accrueAccount(ctx, account, now)
				if err != nil {
					log.Warn().Err(err).Str("account_id", account.ID).Msg("accrual failed")
				}
				record(account, plan, err)
				return nil
			})
		}

		if len(accounts) < uc.pageSize {
			break
		}
		afterID = accounts[len(accounts)-1].ID
	}

	_ = g.Wait()

	finished := time.Now()
	uc.persistRun(ctx, result, started, finished, log)
	uc.observe(result, listErr, finished.Sub(started))

	event := log.Info()
	if listErr != nil || len(result.Errors) > 0 {
		event = log.Warn().AnErr("list_error", listErr)
	}
	event.
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("failed", len(result.Errors)).
		Int64("total_interest", result.TotalInterest).
		Dur("duration", finished.Sub(started)).
		Msg("accrual run finished")

	return result, listErr
}

// AccrueAccount runs accrual for a single account, for operators catching one up.
func (uc *AccrualUseCase) AccrueAccount(ctx context.Context, accountID string, now time.Time) (domain.AccrualPlan, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return domain.AccrualPlan{}, domain.StorageFailure(err)
	}

	if account.IsDeleted() {
		return domain.AccrualPlan{}, domain.ErrAccountNotFound
	}

	return uc.accrueAccount(ctx, account, now)
}

// accrueAccount computes and posts one account's plan. A conflict means the account
// changed between read and lock, so it is re-read and recomputed.
func (uc *AccrualUseCase) accrueAccount(ctx context.Context, account *domain.Account, now time.Time) (domain.AccrualPlan, error) {
	loc := uc.policy.location()

	for attempt := 1; ; attempt++ {
		plan, err := domain.Accrue(account, now, loc)
		if err != nil {
			return domain.AccrualPlan{}, err
		}
		if plan.IsEmpty() {
			return plan, nil
		}

		err = uc.poster.PostInterest(ctx, account.ID, plan)
		if err == nil {
			return plan, nil
		}

		if !errors.Is(err, domain.ErrConcurrencyConflict) || attempt >= uc.maxAttempts {
			return domain.AccrualPlan{}, err
		}

		account, err = uc.accountRepo.GetByID(ctx, account.ID)
		if err != nil {
			return domain.AccrualPlan{}, domain.StorageFailure(err)
		}
	}
}

// LatestRun returns the most recent persisted run summary.
func (uc *AccrualUseCase) LatestRun(ctx context.Context) (*domain.InterestRun, error) {
	if uc.runRepo == nil {
		return nil, domain.ErrInterestRunNotFound
	}
	return uc.runRepo.GetLatest(ctx)
}

// ListRuns returns recent run summaries, newest first.
func (uc *AccrualUseCase) ListRuns(ctx context.Context, limit int) ([]*domain.InterestRun, error) {
	if uc.runRepo == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.runRepo.List(ctx, limit)
}

func (uc *AccrualUseCase) persistRun(ctx context.Context, result *BatchResult, started, finished time.Time, log zerolog.Logger) {
	if uc.runRepo == nil {
		return
	}

	run := &domain.InterestRun{
		ID:            result.RunID,
		RunDate:       result.RunDate,
		Processed:     result.Processed,
		Skipped:       result.Skipped,
		Failed:        len(result.Errors),
		TotalInterest: result.TotalInterest,
		StartedAt:     started.UTC(),
		FinishedAt:    finished.UTC(),
	}

	for _, e := range result.Errors {
		run.Errors = append(run.Errors, domain.AccountError{AccountID: e.AccountID, Error: e.Err.Error()})
	}

	if err := uc.runRepo.Create(ctx, run); err != nil {
		log.Error().Err(err).Msg("failed to persist accrual run")
	}
}

func (uc *AccrualUseCase) observe(result *BatchResult, listErr error, elapsed time.Duration) {
	if uc.metrics == nil {
		return
	}

	status := "ok"
	switch {
	case listErr != nil:
		status = "aborted"
	case len(result.Errors) > 0:
		status = "partial"
	}

	uc.metrics.AccrualRuns.WithLabelValues(status).Inc()
	uc.metrics.AccrualRunDuration.Observe(elapsed.Seconds())
	uc.metrics.AccrualAccounts.WithLabelValues("processed").Add(float64(result.Processed))
	uc.metrics.AccrualAccounts.WithLabelValues("skipped").Add(float64(result.Skipped))
	uc.metrics.AccrualAccounts.WithLabelValues("failed").Add(float64(len(result.Errors)))
}
