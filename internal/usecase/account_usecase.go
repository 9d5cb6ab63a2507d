package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/metrics"
)

// AccountUseCase handles account lifecycle and read models.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	policy      Policy
	cache       AccountCache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	policy Policy,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		policy:      policy,
		cacheTTL:    DefaultSnapshotTTL,
		metrics:     metrics,
		logger:      logger.With().Str("component", "accounts").Logger(),
		now:         time.Now,
	}
}

// WithCache enables account snapshot caching for live-balance reads.
func (uc *AccountUseCase) WithCache(cache AccountCache, ttl time.Duration) *AccountUseCase {
	uc.cache = cache
	if ttl > 0 {
		uc.cacheTTL = ttl
	}
	return uc
}

// WithClock overrides the wall clock.
func (uc *AccountUseCase) WithClock(now func() time.Time) *AccountUseCase {
	uc.now = now
	return uc
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	ParentID string
	Name     string
	// DailyRate defaults to the policy default when nil.
	DailyRate *decimal.Decimal
}

// CreateAccount creates a new child account with a zero balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	rate := uc.policy.DefaultDailyRate
	if input.DailyRate != nil {
		rate = *input.DailyRate
	}

	if err := domain.ValidateDailyRate(rate, uc.policy.MinDailyRate, uc.policy.MaxDailyRate); err != nil {
		return nil, err
	}

	var account *domain.Account

	err := runInTx(ctx, uc.txManager, nil, func(txCtx context.Context, tx Transaction) error {
		if err := uc.accountRepo.LockParent(txCtx, tx, input.ParentID); err != nil {
			return err
		}

		count, err := uc.accountRepo.CountActiveByParent(txCtx, tx, input.ParentID)
		if err != nil {
			return err
		}

		if uc.policy.MaxAccountsPerParent > 0 && count >= uc.policy.MaxAccountsPerParent {
			return domain.ErrAccountLimitReached
		}

		now := uc.now().UTC()
		account = &domain.Account{
			ID:            uc.idGen.Generate(),
			ParentID:      input.ParentID,
			Name:          strings.TrimSpace(input.Name),
			Balance:       0,
			DailyRate:     rate,
			LastAccrualAt: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
			return err
		}

		event := domain.NewAccountEvent(uc.idGen.Generate(), domain.EventTypeAccountCreated, account, now)

		return uc.outboxRepo.Create(txCtx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	if account.IsDeleted() {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}

// ListAccounts lists the active accounts of a parent.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, parentID string) ([]*domain.Account, error) {
	accounts, err := uc.accountRepo.ListByParent(ctx, parentID)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	return accounts, nil
}

// UpdateSettingsInput represents a partial settings update. Nil fields are unchanged.
type UpdateSettingsInput struct {
	AccountID      string
	Name           *string
	DailyRate      *decimal.Decimal
	InterestPaused *bool
}

// UpdateSettings renames, re-rates, pauses or resumes an account. Resuming moves the
// accrual marker to the start of today so paused days are never paid.
func (uc *AccountUseCase) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*domain.Account, error) {
	if input.Name != nil {
		if err := domain.ValidateAccountName(*input.Name); err != nil {
			return nil, err
		}
	}

	if input.DailyRate != nil {
		if err := domain.ValidateDailyRate(*input.DailyRate, uc.policy.MinDailyRate, uc.policy.MaxDailyRate); err != nil {
			return nil, err
		}
	}

	var account *domain.Account

	err := runInTx(ctx, uc.txManager, nil, func(txCtx context.Context, tx Transaction) error {
		var err error

		account, err = uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
		if err != nil {
			return err
		}

		if account.IsDeleted() {
			return domain.ErrAccountNotFound
		}

		now := uc.now().UTC()

		if input.Name != nil {
			account.Name = strings.TrimSpace(*input.Name)
		}

		if input.DailyRate != nil {
			account.DailyRate = *input.DailyRate
		}

		if input.InterestPaused != nil {
			resuming := account.InterestPaused && !*input.InterestPaused
			account.InterestPaused = *input.InterestPaused

			if resuming {
				account.RebaseAccrual(now, uc.policy.location())
			}
		}

		account.UpdatedAt = now

		return uc.accountRepo.UpdateSettings(txCtx, tx, account)
	})
	if err != nil {
		return nil, err
	}

	account.Version++
	uc.invalidate(ctx, account.ID)

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("update_settings").Inc()
	}

	return account, nil
}

// DeleteAccountInput represents input for deleting an account.
type DeleteAccountInput struct {
	AccountID string
	// Force deletes an account that still holds a balance.
	Force bool
}

// DeleteAccount soft-deletes an account. A non-zero balance requires Force.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, input DeleteAccountInput) error {
	err := runInTx(ctx, uc.txManager, nil, func(txCtx context.Context, tx Transaction) error {
		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
		if err != nil {
			return err
		}

		if account.IsDeleted() {
			return domain.ErrAccountNotFound
		}

		if account.Balance != 0 && !input.Force {
			return domain.ErrNonZeroBalance
		}

		now := uc.now().UTC()
		if err := uc.accountRepo.SoftDelete(txCtx, tx, account.ID, now); err != nil {
			return err
		}

		event := domain.NewAccountEvent(uc.idGen.Generate(), domain.EventTypeAccountDeleted, account, now)

		return uc.outboxRepo.Create(txCtx, tx, event)
	})
	if err != nil {
		return err
	}

	uc.invalidate(ctx, input.AccountID)

	if uc.metrics != nil {
		uc.metrics.AccountsDeleted.Inc()
	}

	return nil
}

// LiveBalance is the interpolated display balance of an account.
type LiveBalance struct {
	AccountID      string
	Balance        int64
	Live           float64
	DailyRate      decimal.Decimal
	InterestPaused bool
	LastAccrualAt  time.Time
	AsOf           time.Time
}

// GetLiveBalance returns the display balance at now. It is polled frequently, so the
// account is read through the snapshot cache when one is configured.
func (uc *AccountUseCase) GetLiveBalance(ctx context.Context, id string, now time.Time) (*LiveBalance, error) {
	account, err := uc.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	return &LiveBalance{
		AccountID:      account.ID,
		Balance:        account.Balance,
		Live:           account.LiveBalance(now),
		DailyRate:      account.DailyRate,
		InterestPaused: account.InterestPaused,
		LastAccrualAt:  account.LastAccrualAt,
		AsOf:           now,
	}, nil
}

// Projection is a future balance assuming daily compounding and no other activity.
type Projection struct {
	AccountID string
	Days      int
	Balance   int64
	Projected int64
	Interest  int64
}

// ProjectBalance projects the balance days ahead. Paused accounts project flat.
func (uc *AccountUseCase) ProjectBalance(ctx context.Context, id string, days int) (*Projection, error) {
	if err := domain.ValidateProjectionDays(days); err != nil {
		return nil, err
	}

	account, err := uc.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	projected := account.Balance
	if !account.InterestPaused {
		projected, err = domain.CompoundCents(account.Balance, account.DailyRate, days)
		if err != nil {
			return nil, err
		}
	}

	return &Projection{
		AccountID: account.ID,
		Days:      days,
		Balance:   account.Balance,
		Projected: projected,
		Interest:  projected - account.Balance,
	}, nil
}

func (uc *AccountUseCase) snapshot(ctx context.Context, id string) (*domain.Account, error) {
	if uc.cache != nil {
		account, err := uc.cache.GetAccount(ctx, id)
		switch {
		case err != nil:
			uc.logger.Warn().Err(err).Str("account_id", id).Msg("account snapshot read failed")
		case account != nil:
			uc.cacheLookup("hit")
			return account, nil
		}
		uc.cacheLookup("miss")
	}

	account, err := uc.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetAccount(ctx, account, uc.cacheTTL); err != nil {
			uc.logger.Warn().Err(err).Str("account_id", id).Msg("account snapshot write failed")
		}
	}

	return account, nil
}

func (uc *AccountUseCase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Invalidate(ctx, id); err != nil {
		uc.logger.Warn().Err(err).Str("account_id", id).Msg("failed to invalidate account snapshot")
	}
}

func (uc *AccountUseCase) cacheLookup(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
