package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/postgres/generated"
	"github.com/iho/growbucks/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepositoryWithDB(pool)
}

func newEntryRepositoryWithDB(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create inserts a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	return queriesFor(tx).CreateEntry(ctx, generated.CreateEntryParams{
		ID:           entry.ID,
		AccountID:    entry.AccountID,
		Kind:         string(entry.Kind),
		Amount:       entry.Amount,
		BalanceAfter: entry.BalanceAfter,
		Status:       string(entry.Status),
		Description:  entry.Description,
		OccurredAt:   timeToPgTimestamptz(entry.OccurredAt),
		ProcessedAt:  timePtrToPgTimestamptz(entry.ProcessedAt),
		ProcessedBy:  entry.ProcessedBy,
		CreatedAt:    timeToPgTimestamptz(entry.CreatedAt),
	})
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return rowToEntry(row), nil
}

// GetByIDForUpdate retrieves an entry by ID with a FOR UPDATE lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerEntry, error) {
	row, err := queriesFor(tx).GetEntryByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return rowToEntry(row), nil
}

// UpdateResolution persists the outcome of resolving a pending entry.
func (r *EntryRepository) UpdateResolution(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	n, err := queriesFor(tx).UpdateEntryResolution(ctx, generated.UpdateEntryResolutionParams{
		ID:           entry.ID,
		Status:       string(entry.Status),
		BalanceAfter: entry.BalanceAfter,
		Description:  entry.Description,
		ProcessedAt:  timePtrToPgTimestamptz(entry.ProcessedAt),
		ProcessedBy:  entry.ProcessedBy,
	})

	return affected(n, err, domain.ErrEntryNotFound)
}

// ListByAccount lists an account's entries, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListEntriesByAccount(ctx, generated.ListEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListPendingByParent lists pending withdrawals across a parent's active accounts.
func (r *EntryRepository) ListPendingByParent(ctx context.Context, parentID string) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListPendingEntriesByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// SumInterest totals completed interest postings dated in [from, to).
func (r *EntryRepository) SumInterest(ctx context.Context, accountID string, from, to time.Time) (int64, error) {
	return r.queries.SumInterest(ctx, generated.SumInterestParams{
		AccountID:    accountID,
		OccurredAt:   timeToPgTimestamptz(from),
		OccurredAt_2: timeToPgTimestamptz(to),
	})
}

// GetAccountTotals aggregates an account's completed entries.
func (r *EntryRepository) GetAccountTotals(ctx context.Context, accountID string) (*usecase.AccountTotals, error) {
	row, err := r.queries.GetAccountEntryTotals(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &usecase.AccountTotals{
		CompletedSum:     row.CompletedSum,
		CompletedCount:   row.CompletedCount,
		LastBalanceAfter: row.LastBalanceAfter,
	}, nil
}

func rowsToEntries(rows []generated.LedgerEntry) []*domain.LedgerEntry {
	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries
}

func rowToEntry(row generated.LedgerEntry) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:           row.ID,
		AccountID:    row.AccountID,
		Kind:         domain.EntryKind(row.Kind),
		Amount:       row.Amount,
		BalanceAfter: row.BalanceAfter,
		Status:       domain.EntryStatus(row.Status),
		Description:  row.Description,
		OccurredAt:   row.OccurredAt.Time,
		ProcessedAt:  pgTimestamptzToTimePtr(row.ProcessedAt),
		ProcessedBy:  row.ProcessedBy,
		CreatedAt:    row.CreatedAt.Time,
	}
}
