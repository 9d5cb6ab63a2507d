package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/growbucks/internal/adapter/repository/memory"
	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("id-%08d", g.n.Add(1))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fixture wires the use cases over the memory store.
type fixture struct {
	store     *memory.Store
	accounts  *memory.AccountRepository
	entries   *memory.EntryRepository
	outbox    *memory.OutboxRepository
	runs      *memory.InterestRunRepository
	clock     *fakeClock
	policy    usecase.Policy
	ledger    *usecase.LedgerUseCase
	accountUC *usecase.AccountUseCase
	entryUC   *usecase.EntryUseCase
	accrual   *usecase.AccrualUseCase
	recon     *usecase.ReconciliationUseCase
}

var day0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		store:    store,
		accounts: memory.NewAccountRepository(store),
		entries:  memory.NewEntryRepository(store),
		outbox:   memory.NewOutboxRepository(store),
		runs:     memory.NewInterestRunRepository(store),
		clock:    newFakeClock(day0),
		policy:   usecase.DefaultPolicy(),
	}

	ids := &seqIDs{}
	txManager := memory.NewTxManager(store)
	logger := zerolog.Nop()

	f.ledger = usecase.NewLedgerUseCase(txManager, f.accounts, f.entries, f.outbox, ids, f.policy, nil, logger).
		WithClock(f.clock.Now)
	f.accountUC = usecase.NewAccountUseCase(txManager, f.accounts, f.outbox, ids, f.policy, nil, logger).
		WithClock(f.clock.Now)
	f.entryUC = usecase.NewEntryUseCase(f.entries, f.policy)
	f.accrual = usecase.NewAccrualUseCase(f.accounts, f.runs, f.ledger, ids, f.policy, usecase.AccrualOptions{Workers: 4, PageSize: 2}, nil, logger)
	f.recon = usecase.NewReconciliationUseCase(f.accounts, f.entries, memory.NewLedgerRepository(store))

	return f
}

// newAccount creates an account at the current clock and funds it with balance.
func (f *fixture) newAccount(t *testing.T, parentID string, balance int64) *domain.Account {
	t.Helper()

	ctx := context.Background()
	account, err := f.accountUC.CreateAccount(ctx, usecase.CreateAccountInput{ParentID: parentID, Name: "Savings"})
	require.NoError(t, err)

	if balance > 0 {
		_, err = f.ledger.Deposit(ctx, usecase.DepositInput{AccountID: account.ID, Amount: balance, CallerID: parentID})
		require.NoError(t, err)
	}

	return f.reload(t, account.ID)
}

func (f *fixture) reload(t *testing.T, id string) *domain.Account {
	t.Helper()

	account, err := f.accounts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return account
}

// assertLedgerConsistent checks that the balance equals the sum of completed entries.
func (f *fixture) assertLedgerConsistent(t *testing.T, accountID string) {
	t.Helper()

	result, err := f.recon.ReconcileAccount(context.Background(), accountID)
	require.NoError(t, err)
	require.True(t, result.IsReconciled, "account %s: balance %d, entries %d, last balance_after %d",
		accountID, result.RecordedBalance, result.CalculatedBalance, result.LastBalanceAfter)
}

func rate(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
