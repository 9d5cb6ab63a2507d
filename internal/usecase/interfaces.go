package usecase

import (
	"context"
	"time"

	"github.com/iho/growbucks/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// LockParent serializes account creation for one parent until the transaction ends.
	LockParent(ctx context.Context, tx Transaction, parentID string) error
	CountActiveByParent(ctx context.Context, tx Transaction, parentID string) (int, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance int64, updatedAt time.Time) error
	UpdateAccrual(ctx context.Context, tx Transaction, id string, balance int64, lastAccrualAt, updatedAt time.Time) error
	UpdateSettings(ctx context.Context, tx Transaction, account *domain.Account) error
	SoftDelete(ctx context.Context, tx Transaction, id string, deletedAt time.Time) error
	ListByParent(ctx context.Context, parentID string) ([]*domain.Account, error)
	// ListEligibleForAccrual pages by id through unpaused, non-deleted accounts with a
	// positive balance whose marker is before asOf.
	ListEligibleForAccrual(ctx context.Context, asOf time.Time, afterID string, limit int) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LedgerEntry, error)
	// UpdateResolution persists status, balance after, description and processing fields.
	UpdateResolution(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	ListPendingByParent(ctx context.Context, parentID string) ([]*domain.LedgerEntry, error)
	SumInterest(ctx context.Context, accountID string, from, to time.Time) (int64, error)
	GetAccountTotals(ctx context.Context, accountID string) (*AccountTotals, error)
}

// AccountTotals aggregates completed entries of one account.
type AccountTotals struct {
	CompletedSum     int64
	CompletedCount   int64
	LastBalanceAfter int64
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalBalance, totalCompleted int64, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// InterestRunRepository stores batch accrual summaries.
type InterestRunRepository interface {
	Create(ctx context.Context, run *domain.InterestRun) error
	GetLatest(ctx context.Context) (*domain.InterestRun, error)
	List(ctx context.Context, limit int) ([]*domain.InterestRun, error)
}

// InterestPoster applies an accrual plan atomically. Implemented by LedgerUseCase.
type InterestPoster interface {
	PostInterest(ctx context.Context, accountID string, plan domain.AccrualPlan) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// AccountCache holds account snapshots for frequently polled reads.
// A miss returns (nil, nil).
type AccountCache interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	SetAccount(ctx context.Context, account *domain.Account, ttl time.Duration) error
	Invalidate(ctx context.Context, id string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release frees a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// EventPublisher delivers outbox events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}
