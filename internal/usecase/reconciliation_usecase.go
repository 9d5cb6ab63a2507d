package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/growbucks/internal/domain"
)

// ErrInconsistentLedger is returned when balances disagree with completed entries.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match completed entries")

// ReconciliationUseCase checks that every balance equals the sum of its completed entries.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledgerRepo  LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   int64
	CalculatedBalance int64
	LastBalanceAfter  int64
	Difference        int64
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount compares the recorded balance with the sum of completed entries and
// with the balance after the most recently completed entry.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	totals, err := uc.entryRepo.GetAccountTotals(ctx, account.ID)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	lastMatches := totals.LastBalanceAfter == account.Balance
	if totals.CompletedCount == 0 {
		lastMatches = account.Balance == 0
	}

	return &ReconciliationResult{
		AccountID:         account.ID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: totals.CompletedSum,
		LastBalanceAfter:  totals.LastBalanceAfter,
		Difference:        account.Balance - totals.CompletedSum,
		IsReconciled:      totals.CompletedSum == account.Balance && lastMatches,
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles all accounts in the system, deleted ones included
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	limit, offset, _ := domain.ValidatePagination(1000, 0)

	var results []*ReconciliationResult

	for {
		accounts, err := uc.accountRepo.List(ctx, limit, offset)
		if err != nil {
			return nil, domain.StorageFailure(err)
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < limit {
			return results, nil
		}
		offset += limit
	}
}

// CheckLedgerConsistency compares the total of all balances with the total of all
// completed entries.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	totalBalance, totalCompleted, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return domain.StorageFailure(err)
	}

	if totalBalance != totalCompleted {
		return fmt.Errorf(
			"%w: balances=%d entries=%d difference=%d",
			ErrInconsistentLedger,
			totalBalance,
			totalCompleted,
			totalBalance-totalCompleted,
		)
	}

	return nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	ledgerErr := uc.CheckLedgerConsistency(ctx)
	if ledgerErr != nil && !errors.Is(ledgerErr, ErrInconsistentLedger) {
		return nil, ledgerErr
	}

	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledgerErr == nil,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
