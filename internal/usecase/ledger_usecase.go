package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/metrics"
)

// InterestDescription is the description written on every interest entry.
const InterestDescription = "Daily interest"

// LedgerUseCase is the only writer of account balances, accrual markers and ledger
// entries. Every operation locks the account row for the duration of its transaction.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	policy      Policy
	retrier     Retrier
	cache       AccountCache
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	policy Policy,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		policy:      policy,
		retrier:     singleAttempt{},
		metrics:     metrics,
		logger:      logger.With().Str("component", "ledger").Logger(),
		now:         time.Now,
	}
}

// WithRetrier sets the retrier used around each transaction.
func (uc *LedgerUseCase) WithRetrier(retrier Retrier) *LedgerUseCase {
	if retrier != nil {
		uc.retrier = retrier
	}
	return uc
}

// WithCache sets the snapshot cache invalidated after each commit.
func (uc *LedgerUseCase) WithCache(cache AccountCache) *LedgerUseCase {
	uc.cache = cache
	return uc
}

// WithClock overrides the wall clock.
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountID string
	Amount    int64
	Note      string
	CallerID  string
}

// Deposit credits amount cents to the account.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.LedgerEntry, error) {
	start := time.Now()

	if err := domain.ValidateAmount(input.Amount, uc.policy.MaxAmountCents); err != nil {
		uc.observe("deposit", start, err)
		return nil, err
	}

	var entry *domain.LedgerEntry

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		account, err := uc.lockAccount(txCtx, tx, input.AccountID)
		if err != nil {
			return err
		}

		now := uc.now().UTC()

		// An empty account earned nothing, so its marker restarts today.
		rebased := account.Balance == 0
		if rebased {
			account.RebaseAccrual(now, uc.policy.location())
		}

		newBalance, err := account.ApplyCredit(input.Amount)
		if err != nil {
			return err
		}

		entry = &domain.LedgerEntry{
			ID:           uc.idGen.Generate(),
			AccountID:    account.ID,
			Kind:         domain.EntryKindDeposit,
			Amount:       input.Amount,
			BalanceAfter: newBalance,
			Status:       domain.EntryStatusCompleted,
			Description:  input.Note,
			OccurredAt:   now,
			ProcessedAt:  &now,
			ProcessedBy:  actor(input.CallerID),
			CreatedAt:    now,
		}

		if err := entry.Validate(); err != nil {
			return err
		}

		if err := uc.entryRepo.Create(txCtx, tx, entry); err != nil {
			return err
		}

		if rebased {
			err = uc.accountRepo.UpdateAccrual(txCtx, tx, account.ID, newBalance, account.LastAccrualAt, now)
		} else {
			err = uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, newBalance, now)
		}
		if err != nil {
			return err
		}

		event := domain.NewEntryEvent(uc.idGen.Generate(), domain.EventTypeDepositCompleted, entry, now)

		return uc.outboxRepo.Create(txCtx, tx, event)
	})

	uc.observe("deposit", start, err)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, input.AccountID)

	if uc.metrics != nil {
		uc.metrics.LedgerAmount.WithLabelValues(string(domain.EntryKindDeposit)).Observe(float64(input.Amount))
	}

	return entry, nil
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	AccountID string
	Amount    int64
	Note      string
	// RequestedByOwner marks a request made by the child; it stays pending until a
	// parent resolves it.
	RequestedByOwner bool
	CallerID         string
}

// Withdraw debits the account immediately, or records a pending request when the
// owner asks. Either way the amount must be covered by the current balance.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.LedgerEntry, error) {
	start := time.Now()

	if err := domain.ValidateAmount(input.Amount, uc.policy.MaxAmountCents); err != nil {
		uc.observe("withdraw", start, err)
		return nil, err
	}

	var entry *domain.LedgerEntry

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		account, err := uc.lockAccount(txCtx, tx, input.AccountID)
		if err != nil {
			return err
		}

		if err := account.ValidateDebit(input.Amount); err != nil {
			return err
		}

		now := uc.now().UTC()
		entry = &domain.LedgerEntry{
			ID:           uc.idGen.Generate(),
			AccountID:    account.ID,
			Kind:         domain.EntryKindWithdrawal,
			Amount:       -input.Amount,
			BalanceAfter: account.ApplyDebit(input.Amount),
			Status:       domain.EntryStatusCompleted,
			Description:  input.Note,
			OccurredAt:   now,
			CreatedAt:    now,
		}

		eventType := domain.EventTypeWithdrawalCompleted
		if input.RequestedByOwner {
			entry.Status = domain.EntryStatusPending
			eventType = domain.EventTypeWithdrawalRequested
		} else {
			entry.ProcessedAt = &now
			entry.ProcessedBy = actor(input.CallerID)
		}

		if err := entry.Validate(); err != nil {
			return err
		}

		if err := uc.entryRepo.Create(txCtx, tx, entry); err != nil {
			return err
		}

		if !input.RequestedByOwner {
			if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, entry.BalanceAfter, now); err != nil {
				return err
			}
		}

		return uc.outboxRepo.Create(txCtx, tx, domain.NewEntryEvent(uc.idGen.Generate(), eventType, entry, now))
	})

	uc.observe("withdraw", start, err)
	if err != nil {
		return nil, err
	}

	if !input.RequestedByOwner {
		uc.invalidate(ctx, input.AccountID)
	}

	if uc.metrics != nil {
		uc.metrics.LedgerAmount.WithLabelValues(string(domain.EntryKindWithdrawal)).Observe(float64(input.Amount))
	}

	return entry, nil
}

// ResolveInput represents input for resolving a pending withdrawal.
type ResolveInput struct {
	EntryID    string
	Approve    bool
	ResolverID string
	Reason     string
}

// ResolvePending approves or rejects a pending withdrawal. Approval re-checks the
// balance at resolution time; when it no longer covers the amount the entry stays
// pending and ErrInsufficientBalance is returned.
func (uc *LedgerUseCase) ResolvePending(ctx context.Context, input ResolveInput) (*domain.LedgerEntry, error) {
	start := time.Now()

	var entry *domain.LedgerEntry

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		// Unlocked read to learn the account; locks go account first, then entry.
		current, err := uc.entryRepo.GetByID(txCtx, input.EntryID)
		if err != nil {
			return err
		}

		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, current.AccountID)
		if err != nil {
			return err
		}

		entry, err = uc.entryRepo.GetByIDForUpdate(txCtx, tx, input.EntryID)
		if err != nil {
			return err
		}

		if !entry.IsPending() {
			return domain.ErrNotPending
		}

		now := uc.now().UTC()

		if !input.Approve {
			if err := entry.Reject(input.Reason, actor(input.ResolverID), now); err != nil {
				return err
			}

			if err := uc.entryRepo.UpdateResolution(txCtx, tx, entry); err != nil {
				return err
			}

			event := domain.NewEntryEvent(uc.idGen.Generate(), domain.EventTypeWithdrawalRejected, entry, now)

			return uc.outboxRepo.Create(txCtx, tx, event)
		}

		if account.IsDeleted() {
			return domain.ErrAccountNotFound
		}

		if err := account.ValidateDebit(entry.Magnitude()); err != nil {
			return err
		}

		newBalance := account.ApplyDebit(entry.Magnitude())
		if err := entry.Complete(newBalance, actor(input.ResolverID), now); err != nil {
			return err
		}

		if err := uc.entryRepo.UpdateResolution(txCtx, tx, entry); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, newBalance, now); err != nil {
			return err
		}

		event := domain.NewEntryEvent(uc.idGen.Generate(), domain.EventTypeWithdrawalCompleted, entry, now)

		return uc.outboxRepo.Create(txCtx, tx, event)
	})

	uc.observe("resolve", start, err)
	if err != nil {
		return nil, err
	}

	if entry.Status == domain.EntryStatusCompleted {
		uc.invalidate(ctx, entry.AccountID)
	}

	return entry, nil
}

// PostInterest applies an accrual plan: every posting becomes a completed interest
// entry and the marker moves to plan.NewLastAccrualAt, all in one transaction.
// The plan must have been computed from the account's current balance and marker,
// otherwise ErrConcurrencyConflict is returned and nothing is written.
func (uc *LedgerUseCase) PostInterest(ctx context.Context, accountID string, plan domain.AccrualPlan) error {
	if plan.IsEmpty() {
		return nil
	}

	if plan.AccountID != "" && plan.AccountID != accountID {
		return fmt.Errorf("%w: plan for %s applied to %s", domain.ErrInvalidEntry, plan.AccountID, accountID)
	}

	start := time.Now()

	err := uc.inTx(ctx, func(txCtx context.Context, tx Transaction) error {
		account, err := uc.lockAccount(txCtx, tx, accountID)
		if err != nil {
			return err
		}

		if account.InterestPaused ||
			account.Balance != plan.OpeningBalance ||
			!account.LastAccrualAt.Equal(plan.From) {
			return fmt.Errorf("%w: account %s changed since accrual was computed", domain.ErrConcurrencyConflict, accountID)
		}

		now := uc.now().UTC()

		for _, posting := range plan.Postings {
			entry := &domain.LedgerEntry{
				ID:           uc.idGen.Generate(),
				AccountID:    accountID,
				Kind:         domain.EntryKindInterest,
				Amount:       posting.Amount,
				BalanceAfter: posting.BalanceAfter,
				Status:       domain.EntryStatusCompleted,
				Description:  InterestDescription,
				OccurredAt:   posting.OccurredAt,
				ProcessedAt:  &now,
				ProcessedBy:  domain.SystemActor,
				CreatedAt:    now,
			}

			if err := entry.Validate(); err != nil {
				return err
			}

			if err := uc.entryRepo.Create(txCtx, tx, entry); err != nil {
				return err
			}
		}

		if err := uc.accountRepo.UpdateAccrual(txCtx, tx, accountID, plan.FinalBalance, plan.NewLastAccrualAt, now); err != nil {
			return err
		}

		return uc.outboxRepo.Create(txCtx, tx, domain.NewInterestPostedEvent(uc.idGen.Generate(), plan, now))
	})

	uc.observe("post_interest", start, err)
	if err != nil {
		return err
	}

	uc.invalidate(ctx, accountID)

	if uc.metrics != nil {
		uc.metrics.InterestPosted.Add(float64(plan.TotalInterest()))
		uc.metrics.InterestPostings.Add(float64(len(plan.Postings)))
	}

	return nil
}

func (uc *LedgerUseCase) lockAccount(ctx context.Context, tx Transaction, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if account.IsDeleted() {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}

// inTx runs fn in a transaction bounded by DefaultTransactionTimeout, retrying the
// whole transaction on transient conflicts. Non-domain errors surface as
// ErrStorageFailure.
func (uc *LedgerUseCase) inTx(ctx context.Context, fn func(context.Context, Transaction) error) error {
	return runInTx(ctx, uc.txManager, uc.retrier, fn)
}

func (uc *LedgerUseCase) invalidate(ctx context.Context, accountID string) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Invalidate(ctx, accountID); err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("failed to invalidate account snapshot")
	}
}

func (uc *LedgerUseCase) observe(operation string, start time.Time, err error) {
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		uc.logger.Warn().Err(err).Str("operation", operation).Msg("concurrency conflict")
	}

	if uc.metrics == nil {
		return
	}

	uc.metrics.LedgerOperations.WithLabelValues(operation, Outcome(err)).Inc()
	uc.metrics.LedgerDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if errors.Is(err, domain.ErrConcurrencyConflict) {
		uc.metrics.ConcurrencyConflicts.WithLabelValues(operation).Inc()
	}
}

func actor(callerID string) string {
	if callerID == "" {
		return domain.SystemActor
	}
	return callerID
}
