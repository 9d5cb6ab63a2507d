package memory

import (
	"context"
	"sort"

	"github.com/iho/growbucks/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// CheckConsistency returns the sum of all balances and the sum of all completed entries.
func (r *LedgerRepository) CheckConsistency(_ context.Context) (int64, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var totalBalance, totalCompleted int64

	for _, a := range r.store.accounts {
		totalBalance += a.Balance
	}

	for _, e := range r.store.entries {
		if e.Status == domain.EntryStatusCompleted {
			totalCompleted += e.Amount
		}
	}

	return totalBalance, totalCompleted, nil
}

// InterestRunRepository implements usecase.InterestRunRepository.
type InterestRunRepository struct {
	store *Store
}

// NewInterestRunRepository creates a new InterestRunRepository.
func NewInterestRunRepository(store *Store) *InterestRunRepository {
	return &InterestRunRepository{store: store}
}

func (r *InterestRunRepository) Create(_ context.Context, run *domain.InterestRun) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c := *run
	c.Errors = append([]domain.AccountError(nil), run.Errors...)
	r.store.runs = append(r.store.runs, &c)

	return nil
}

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

// List returns runs, most recently started first.
func (r *InterestRunRepository) List(_ context.Context, limit int) ([]*domain.InterestRun, error) {
	r.store.mu.RLock()
	runs := make([]*domain.InterestRun, 0, len(r.store.runs))
	for _, run := range r.store.runs {
		c := *run
		runs = append(runs, &c)
	}
	r.store.mu.RUnlock()

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}
