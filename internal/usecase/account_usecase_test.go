package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
	"github.com/iho/growbucks/internal/usecase/mocks"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name     string
		input    usecase.CreateAccountInput
		wantErr  error
		wantRate string
	}{
		{
			name:     "default rate",
			input:    usecase.CreateAccountInput{ParentID: "parent-1", Name: "  Emma  "},
			wantRate: "0.01",
		},
		{
			name:     "explicit rate at upper bound",
			input:    usecase.CreateAccountInput{ParentID: "parent-1", Name: "Emma", DailyRate: rate("0.05")},
			wantRate: "0.05",
		},
		{
			name:    "rate below minimum",
			input:   usecase.CreateAccountInput{ParentID: "parent-1", Name: "Emma", DailyRate: rate("0.0009")},
			wantErr: domain.ErrRateOutOfBounds,
		},
		{
			name:    "rate above maximum",
			input:   usecase.CreateAccountInput{ParentID: "parent-1", Name: "Emma", DailyRate: rate("0.051")},
			wantErr: domain.ErrRateOutOfBounds,
		},
		{
			name:    "blank name",
			input:   usecase.CreateAccountInput{ParentID: "parent-1", Name: "   "},
			wantErr: domain.ErrInvalidAccountName,
		},
		{
			name:    "name too long",
			input:   usecase.CreateAccountInput{ParentID: "parent-1", Name: strings.Repeat("a", 51)},
			wantErr: domain.ErrInvalidAccountName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)

			account, err := f.accountUC.CreateAccount(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Emma", account.Name)
			assert.Equal(t, int64(0), account.Balance)
			assert.Equal(t, tt.wantRate, account.DailyRate.String())
			assert.True(t, account.LastAccrualAt.Equal(day0))

			events, err := f.outbox.GetByAggregate(ctx, domain.AggregateTypeAccount, account.ID, 10, 0)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventTypeAccountCreated, events[0].EventType)
		})
	}
}

func TestAccountUseCase_CreateAccountLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for range usecase.DefaultMaxAccountsPerParent {
		f.newAccount(t, "parent-1", 0)
	}

	_, err := f.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{ParentID: "parent-1", Name: "One too many"})
	assert.ErrorIs(t, err, domain.ErrAccountLimitReached)

	// Other parents are unaffected, and deleting frees a slot.
	_, err = f.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{ParentID: "parent-2", Name: "Sam"})
	require.NoError(t, err)

	accounts, err := f.accountUC.ListAccounts(ctx, "parent-1")
	require.NoError(t, err)
	require.Len(t, accounts, usecase.DefaultMaxAccountsPerParent)

	require.NoError(t, f.accountUC.DeleteAccount(ctx, usecase.DeleteAccountInput{AccountID: accounts[0].ID}))

	_, err = f.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{ParentID: "parent-1", Name: "Replacement"})
	require.NoError(t, err)
}

func TestAccountUseCase_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	account := f.newAccount(t, "parent-1", 10_000)

	name := "College fund"
	updated, err := f.accountUC.UpdateSettings(ctx, usecase.UpdateSettingsInput{
		AccountID: account.ID,
		Name:      &name,
		DailyRate: rate("0.02"),
	})
	require.NoError(t, err)
	assert.Equal(t, "College fund", updated.Name)
	assert.Equal(t, "0.02", updated.DailyRate.String())

	_, err = f.accountUC.UpdateSettings(ctx, usecase.UpdateSettingsInput{AccountID: account.ID, DailyRate: rate("0.5")})
	assert.ErrorIs(t, err, domain.ErrRateOutOfBounds)

	_, err = f.accountUC.UpdateSettings(ctx, usecase.UpdateSettingsInput{AccountID: "missing", Name: &name})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_ResumeDoesNotPayPausedDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	account := f.newAccount(t, "parent-1", 10_000)

	paused, resumed := true, false

	_, err := f.accountUC.UpdateSettings(ctx, usecase.UpdateSettingsInput{AccountID: account.ID, InterestPaused: &paused})
	require.NoError(t, err)

	// Ten paused days.
	f.clock.Set(day0.Add(10*24*time.Hour + 2*time.Hour))
	result, err := f.accrual.RunDailyAccrual(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, result.Processed)

	_, err = f.accountUC.UpdateSettings(ctx, usecase.UpdateSettingsInput{AccountID: account.ID, InterestPaused: &resumed})
	require.NoError(t, err)

	reloaded := f.reload(t, account.ID)
	assert.True(t, reloaded.LastAccrualAt.Equal(domain.StartOfDay(f.clock.Now(), time.UTC)))

	// Only the first day after resuming is paid.
	result, err = f.accrual.RunDailyAccrual(ctx, f.clock.Now().Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.TotalInterest)
	assert.Equal(t, int64(10_100), f.reload(t, account.ID).Balance)
}

func TestAccountUseCase_DeleteAccount(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		force   bool
		wantErr error
	}{
		{name: "empty account", balance: 0},
		{name: "funded account refused", balance: 500, wantErr: domain.ErrNonZeroBalance},
		{name: "funded account forced", balance: 500, force: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			account := f.newAccount(t, "parent-1", tt.balance)

			err := f.accountUC.DeleteAccount(ctx, usecase.DeleteAccountInput{AccountID: account.ID, Force: tt.force})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, err = f.accountUC.GetAccount(ctx, account.ID)
				assert.NoError(t, err)
				return
			}

			require.NoError(t, err)

			_, err = f.accountUC.GetAccount(ctx, account.ID)
			assert.ErrorIs(t, err, domain.ErrAccountNotFound)

			err = f.accountUC.DeleteAccount(ctx, usecase.DeleteAccountInput{AccountID: account.ID})
			assert.ErrorIs(t, err, domain.ErrAccountNotFound)

			// Deleted accounts still reconcile: their entries stay in the ledger.
			f.assertLedgerConsistent(t, account.ID)
		})
	}
}

func TestAccountUseCase_ProjectBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	account := f.newAccount(t, "parent-1", 10_000)

	projection, err := f.accountUC.ProjectBalance(ctx, account.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(10_303), projection.Projected)
	assert.Equal(t, int64(303), projection.Interest)

	_, err = f.accountUC.ProjectBalance(ctx, account.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidProjectionDays)

	_, err = f.accountUC.ProjectBalance(ctx, account.ID, domain.MaxProjectionDays+1)
	assert.ErrorIs(t, err, domain.ErrInvalidProjectionDays)

	paused := true
	_, err = f.accountUC.UpdateSettings(ctx, usecase.UpdateSettingsInput{AccountID: account.ID, InterestPaused: &paused})
	require.NoError(t, err)

	projection, err = f.accountUC.ProjectBalance(ctx, account.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), projection.Projected)
}

func TestAccountUseCase_ProjectBalanceOverflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	account := f.newAccount(t, "parent-1", 1_000_000)

	_, err := f.accountUC.UpdateSettings(ctx, usecase.UpdateSettingsInput{AccountID: account.ID, DailyRate: rate("0.05")})
	require.NoError(t, err)

	_, err = f.accountUC.ProjectBalance(ctx, account.ID, domain.MaxProjectionDays)
	assert.ErrorIs(t, err, domain.ErrAmountOverflow)

	projection, err := f.accountUC.ProjectBalance(ctx, account.ID, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(54_211_841_577_839), projection.Projected)
}

func TestAccountUseCase_GetLiveBalanceUsesCache(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	accountRepo := mocks.NewMockAccountRepository(ctrl)
	cache := mocks.NewMockAccountCache(ctrl)

	uc := usecase.NewAccountUseCase(nil, accountRepo, nil, nil, usecase.DefaultPolicy(), nil, zerolog.Nop()).
		WithCache(cache, time.Minute)

	account := &domain.Account{
		ID:            "acc-1",
		Balance:       10_000,
		DailyRate:     *rate("0.01"),
		LastAccrualAt: day0,
	}
	halfDay := day0.Add(12 * time.Hour)

	gomock.InOrder(
		cache.EXPECT().GetAccount(gomock.Any(), "acc-1").Return(nil, nil),
		accountRepo.EXPECT().GetByID(gomock.Any(), "acc-1").Return(account, nil),
		cache.EXPECT().SetAccount(gomock.Any(), account, time.Minute).Return(nil),
		cache.EXPECT().GetAccount(gomock.Any(), "acc-1").Return(account, nil),
	)

	live, err := uc.GetLiveBalance(ctx, "acc-1", halfDay)
	require.NoError(t, err)
	assert.InDelta(t, 10_050.0, live.Live, 1e-9)

	live, err = uc.GetLiveBalance(ctx, "acc-1", halfDay)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), live.Balance)
}

func TestAccountUseCase_GetLiveBalanceFallsBackWhenCacheFails(t *testing.T) {
	ctrl := gomock.NewController(t)

	accountRepo := mocks.NewMockAccountRepository(ctrl)
	cache := mocks.NewMockAccountCache(ctrl)

	uc := usecase.NewAccountUseCase(nil, accountRepo, nil, nil, usecase.DefaultPolicy(), nil, zerolog.Nop()).
		WithCache(cache, 0)

	account := &domain.Account{ID: "acc-1", Balance: 500, DailyRate: *rate("0.01"), LastAccrualAt: day0}

	cache.EXPECT().GetAccount(gomock.Any(), "acc-1").Return(nil, errors.New("redis down"))
	accountRepo.EXPECT().GetByID(gomock.Any(), "acc-1").Return(account, nil)
	cache.EXPECT().SetAccount(gomock.Any(), account, usecase.DefaultSnapshotTTL).Return(errors.New("redis down"))

	live, err := uc.GetLiveBalance(context.Background(), "acc-1", day0)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, live.Live, 1e-9)
}

func TestAccountUseCase_MutationsInvalidateCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	account := f.newAccount(t, "parent-1", 0)

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockAccountCache(ctrl)
	cache.EXPECT().Invalidate(gomock.Any(), account.ID).Return(nil).Times(2)

	f.ledger.WithCache(cache)
	f.accountUC.WithCache(cache, 0)

	_, err := f.ledger.Deposit(ctx, usecase.DepositInput{AccountID: account.ID, Amount: 100})
	require.NoError(t, err)

	paused := true
	_, err = f.accountUC.UpdateSettings(ctx, usecase.UpdateSettingsInput{AccountID: account.ID, InterestPaused: &paused})
	require.NoError(t, err)
}
