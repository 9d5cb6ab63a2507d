package usecase

import (
	"context"
	"time"

	"github.com/iho/growbucks/internal/domain"
)

// EntryUseCase handles ledger entry read models.
type EntryUseCase struct {
	entryRepo EntryRepository
	policy    Policy
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(entryRepo EntryRepository, policy Policy) *EntryUseCase {
	return &EntryUseCase{
		entryRepo: entryRepo,
		policy:    policy,
	}
}

// GetEntriesByAccountInput represents input for listing entries.
type GetEntriesByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// GetEntriesByAccount lists entries for an account, newest first.
func (uc *EntryUseCase) GetEntriesByAccount(ctx context.Context, input GetEntriesByAccountInput) ([]*domain.LedgerEntry, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	if input.Offset < 0 {
		input.Offset = 0
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	return entries, nil
}

// GetEntry retrieves one entry.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	return entry, nil
}

// PendingSummary lists a parent's pending withdrawals with their total.
type PendingSummary struct {
	Entries    []*domain.LedgerEntry
	Count      int
	TotalCents int64
}

// ListPending returns every pending withdrawal across a parent's accounts.
func (uc *EntryUseCase) ListPending(ctx context.Context, parentID string) (*PendingSummary, error) {
	entries, err := uc.entryRepo.ListPendingByParent(ctx, parentID)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	summary := &PendingSummary{Entries: entries, Count: len(entries)}
	for _, e := range entries {
		summary.TotalCents += e.Magnitude()
	}

	return summary, nil
}

// InterestSummary is the interest earned by an account in the current day and month.
type InterestSummary struct {
	AccountID string
	Today     int64
	ThisMonth int64
	AsOf      time.Time
}

// GetInterestSummary sums interest entries by the day they were earned for.
func (uc *EntryUseCase) GetInterestSummary(ctx context.Context, accountID string, now time.Time) (*InterestSummary, error) {
	loc := uc.policy.location()

	dayStart := domain.StartOfDay(now, loc)
	dayEnd := domain.AddDays(dayStart, 1, loc)

	local := now.In(loc)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	today, err := uc.entryRepo.SumInterest(ctx, accountID, dayStart, dayEnd)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	month, err := uc.entryRepo.SumInterest(ctx, accountID, monthStart, monthEnd)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	return &InterestSummary{
		AccountID: accountID,
		Today:     today,
		ThisMonth: month,
		AsOf:      now,
	}, nil
}
