package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepositoryWithDB(pool)
}

func newLedgerRepositoryWithDB(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency returns the sum of all balances and the sum of all completed entries.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (totalBalance, totalCompleted int64, err error) {
	result, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return 0, 0, err
	}

	return result.TotalAccountBalance, result.TotalEntryAmount, nil
}

// InterestRunRepository implements usecase.InterestRunRepository.
type InterestRunRepository struct {
	queries *generated.Queries
}

// NewInterestRunRepository creates a new InterestRunRepository.
func NewInterestRunRepository(pool *pgxpool.Pool) *InterestRunRepository {
	return newInterestRunRepositoryWithDB(pool)
}

func newInterestRunRepositoryWithDB(db generated.DBTX) *InterestRunRepository {
	return &InterestRunRepository{queries: generated.New(db)}
}

// Create stores a run summary.
func (r *InterestRunRepository) Create(ctx context.Context, run *domain.InterestRun) error {
	errs := run.Errors
	if errs == nil {
		errs = []domain.AccountError{}
	}

	payload, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("marshal run errors: %w", err)
	}

	return r.queries.CreateInterestRun(ctx, generated.CreateInterestRunParams{
		ID:            run.ID,
		RunDate:       timeToPgTimestamptz(run.RunDate),
		Processed:     int32(run.Processed),
		Skipped:       int32(run.Skipped),
		Failed:        int32(run.Failed),
		TotalInterest: run.TotalInterest,
		Errors:        payload,
		StartedAt:     timeToPgTimestamptz(run.StartedAt),
		FinishedAt:    timeToPgTimestamptz(run.FinishedAt),
	})
}

// GetLatest returns the most recently started run.
func (r *InterestRunRepository) GetLatest(ctx context.Context) (*domain.InterestRun, error) {
	runs, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}

	if len(runs) == 0 {
		return nil, domain.ErrInterestRunNotFound
	}

	return runs[0], nil
}

// List returns runs, newest first.
func (r *InterestRunRepository) List(ctx context.Context, limit int) ([]*domain.InterestRun, error) {
	rows, err := r.queries.ListInterestRuns(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	runs := make([]*domain.InterestRun, 0, len(rows))
	for _, row := range rows {
		run := &domain.InterestRun{
			ID:            row.ID,
			RunDate:       row.RunDate.Time,
			Processed:     int(row.Processed),
			Skipped:       int(row.Skipped),
			Failed:        int(row.Failed),
			TotalInterest: row.TotalInterest,
			StartedAt:     row.StartedAt.Time,
			FinishedAt:    row.FinishedAt.Time,
		}
		if len(row.Errors) > 0 {
			if err := json.Unmarshal(row.Errors, &run.Errors); err != nil {
				return nil, fmt.Errorf("decode run errors: %w", err)
			}
		}
		runs = append(runs, run)
	}

	return runs, nil
}
