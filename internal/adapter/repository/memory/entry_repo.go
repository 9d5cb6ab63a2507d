package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

func (r *EntryRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, exists := t.entry(entry.ID); exists {
		return fmt.Errorf("memory: entry %s already exists", entry.ID)
	}

	t.entries[entry.ID] = cloneEntry(entry)
	t.created = append(t.created, entry.ID)

	return nil
}

func (r *EntryRepository) GetByID(_ context.Context, id string) (*domain.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}

	return cloneEntry(e), nil
}

func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerEntry, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := t.lock(ctx, "entry:"+id); err != nil {
		return nil, err
	}

	e, ok := t.entry(id)
	if !ok {
		return nil, domain.ErrEntryNotFound
	}

	return cloneEntry(e), nil
}

func (r *EntryRepository) UpdateResolution(_ context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	current, ok := t.entry(entry.ID)
	if !ok {
		return domain.ErrEntryNotFound
	}

	current.Status = entry.Status
	current.BalanceAfter = entry.BalanceAfter
	current.Description = entry.Description
	current.ProcessedAt = entry.ProcessedAt
	current.ProcessedBy = entry.ProcessedBy
	t.entries[entry.ID] = cloneEntry(current)

	return nil
}

// ListByAccount returns entries newest first.
func (r *EntryRepository) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	entries := r.filter(func(e *domain.LedgerEntry) bool { return e.AccountID == accountID })

	if offset >= len(entries) {
		return []*domain.LedgerEntry{}, nil
	}
	entries = entries[offset:]

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

func (r *EntryRepository) ListPendingByParent(_ context.Context, parentID string) ([]*domain.LedgerEntry, error) {
	r.store.mu.RLock()
	owned := make(map[string]bool)
	for id, a := range r.store.accounts {
		if a.ParentID == parentID && !a.IsDeleted() {
			owned[id] = true
		}
	}
	r.store.mu.RUnlock()

	entries := r.filter(func(e *domain.LedgerEntry) bool {
		return e.IsPending() && owned[e.AccountID]
	})

	// oldest request first
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })

	return entries, nil
}

// SumInterest sums completed interest entries whose OccurredAt falls in [from, to).
func (r *EntryRepository) SumInterest(_ context.Context, accountID string, from, to time.Time) (int64, error) {
	entries := r.filter(func(e *domain.LedgerEntry) bool {
		return e.AccountID == accountID &&
			e.Kind == domain.EntryKindInterest &&
			e.Status == domain.EntryStatusCompleted &&
			!e.OccurredAt.Before(from) &&
			e.OccurredAt.Before(to)
	})

	var total int64
	for _, e := range entries {
		total += e.Amount
	}

	return total, nil
}

func (r *EntryRepository) GetAccountTotals(_ context.Context, accountID string) (*usecase.AccountTotals, error) {
	entries := r.filter(func(e *domain.LedgerEntry) bool {
		return e.AccountID == accountID && e.Status == domain.EntryStatusCompleted
	})

	totals := &usecase.AccountTotals{CompletedCount: int64(len(entries))}
	if len(entries) == 0 {
		return totals, nil
	}

	for _, e := range entries {
		totals.CompletedSum += e.Amount
	}

	latest := entries[0]
	for _, e := range entries[1:] {
		if completedAfter(e, latest) {
			latest = e
		}
	}
	totals.LastBalanceAfter = latest.BalanceAfter

	return totals, nil
}

// filter returns matching committed entries, newest insert first.
func (r *EntryRepository) filter(keep func(*domain.LedgerEntry) bool) []*domain.LedgerEntry {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := make([]*domain.LedgerEntry, 0)
	for i := len(r.store.entryOrder) - 1; i >= 0; i-- {
		e := r.store.entries[r.store.entryOrder[i]]
		if keep(e) {
			entries = append(entries, cloneEntry(e))
		}
	}

	return entries
}

// completedAfter orders completed entries by processed_at, occurred_at, then id.
func completedAfter(a, b *domain.LedgerEntry) bool {
	ap, bp := processedAt(a), processedAt(b)
	if !ap.Equal(bp) {
		return ap.After(bp)
	}
	if !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.After(b.OccurredAt)
	}
	return a.ID > b.ID
}

func processedAt(e *domain.LedgerEntry) time.Time {
	if e.ProcessedAt == nil {
		return e.CreatedAt
	}
	return *e.ProcessedAt
}
