package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/postgres/generated"
	"github.com/iho/growbucks/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepositoryWithDB(pool)
}

func newAccountRepositoryWithDB(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if account.Version == 0 {
		account.Version = 1
	}

	return queriesFor(tx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:             account.ID,
		ParentID:       account.ParentID,
		Name:           account.Name,
		Balance:        account.Balance,
		DailyRate:      decimalToNumeric(account.DailyRate),
		InterestPaused: account.InterestPaused,
		LastAccrualAt:  timeToPgTimestamptz(account.LastAccrualAt),
		Version:        account.Version,
		CreatedAt:      timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})
}

// GetByID retrieves an account by ID, including soft-deleted ones.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	row, err := queriesFor(tx).GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// LockParent takes a transaction-scoped advisory lock keyed by parent ID.
func (r *AccountRepository) LockParent(ctx context.Context, tx usecase.Transaction, parentID string) error {
	return queriesFor(tx).LockParent(ctx, parentID)
}

// CountActiveByParent counts non-deleted accounts of a parent.
func (r *AccountRepository) CountActiveByParent(ctx context.Context, tx usecase.Transaction, parentID string) (int, error) {
	n, err := queriesFor(tx).CountActiveAccountsByParent(ctx, parentID)
	if err != nil {
		return 0, err
	}

	return int(n), nil
}

// UpdateBalance updates an account's balance.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance int64, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:        id,
		Balance:   balance,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})

	return affected(n, err, domain.ErrAccountNotFound)
}

// UpdateAccrual updates balance and accrual marker together.
func (r *AccountRepository) UpdateAccrual(ctx context.Context, tx usecase.Transaction, id string, balance int64, lastAccrualAt, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateAccountAccrual(ctx, generated.UpdateAccountAccrualParams{
		ID:            id,
		Balance:       balance,
		LastAccrualAt: timeToPgTimestamptz(lastAccrualAt),
		UpdatedAt:     timeToPgTimestamptz(updatedAt),
	})

	return affected(n, err, domain.ErrAccountNotFound)
}

// UpdateSettings persists name, rate, pause flag and accrual marker.
func (r *AccountRepository) UpdateSettings(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	n, err := queriesFor(tx).UpdateAccountSettings(ctx, generated.UpdateAccountSettingsParams{
		ID:             account.ID,
		Name:           account.Name,
		DailyRate:      decimalToNumeric(account.DailyRate),
		InterestPaused: account.InterestPaused,
		LastAccrualAt:  timeToPgTimestamptz(account.LastAccrualAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})

	return affected(n, err, domain.ErrAccountNotFound)
}

// SoftDelete marks an account deleted.
func (r *AccountRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	n, err := queriesFor(tx).SoftDeleteAccount(ctx, generated.SoftDeleteAccountParams{
		ID:        id,
		DeletedAt: timeToPgTimestamptz(deletedAt),
	})

	return affected(n, err, domain.ErrAccountNotFound)
}

// ListByParent lists a parent's active accounts, oldest first.
func (r *AccountRepository) ListByParent(ctx context.Context, parentID string) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// ListEligibleForAccrual pages by ID through accounts that can accrue before asOf.
func (r *AccountRepository) ListEligibleForAccrual(ctx context.Context, asOf time.Time, afterID string, limit int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsEligibleForAccrual(ctx, generated.ListAccountsEligibleForAccrualParams{
		LastAccrualAt: timeToPgTimestamptz(asOf),
		ID:            afterID,
		Limit:         int32(limit),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// List returns accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, len(rows))
	for i, row := range rows {
		accounts[i] = rowToAccount(row)
	}

	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:             row.ID,
		ParentID:       row.ParentID,
		Name:           row.Name,
		Balance:        row.Balance,
		DailyRate:      numericToDecimal(row.DailyRate),
		InterestPaused: row.InterestPaused,
		LastAccrualAt:  row.LastAccrualAt.Time,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
		DeletedAt:      pgTimestamptzToTimePtr(row.DeletedAt),
	}
}

func affected(n int64, err error, notFound error) error {
	if err != nil {
		return err
	}

	if n == 0 {
		return notFound
	}

	return nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}

	return timeToPgTimestamptz(*t)
}

func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}

	t := ts.Time

	return &t
}
