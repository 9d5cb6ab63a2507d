package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
	"github.com/iho/growbucks/internal/usecase/mocks"
)

func newMockedReconciliation(t *testing.T) (*usecase.ReconciliationUseCase, *mocks.MockAccountRepository, *mocks.MockEntryRepository, *mocks.MockLedgerRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	accountRepo := mocks.NewMockAccountRepository(ctrl)
	entryRepo := mocks.NewMockEntryRepository(ctrl)
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)

	return usecase.NewReconciliationUseCase(accountRepo, entryRepo, ledgerRepo), accountRepo, entryRepo, ledgerRepo
}

func TestReconcileAccount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		balance        int64
		totals         usecase.AccountTotals
		wantReconciled bool
		wantDifference int64
	}{
		{
			name:           "balanced",
			balance:        150,
			totals:         usecase.AccountTotals{CompletedSum: 150, CompletedCount: 3, LastBalanceAfter: 150},
			wantReconciled: true,
		},
		{
			name:           "empty account without entries",
			balance:        0,
			totals:         usecase.AccountTotals{},
			wantReconciled: true,
		},
		{
			name:           "sum mismatch",
			balance:        150,
			totals:         usecase.AccountTotals{CompletedSum: 100, CompletedCount: 2, LastBalanceAfter: 150},
			wantDifference: 50,
		},
		{
			name:    "last balance after mismatch",
			balance: 150,
			totals:  usecase.AccountTotals{CompletedSum: 150, CompletedCount: 2, LastBalanceAfter: 120},
		},
		{
			name:           "balance without entries",
			balance:        10,
			totals:         usecase.AccountTotals{},
			wantDifference: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc, accountRepo, entryRepo, _ := newMockedReconciliation(t)
			accountRepo.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1", Balance: tt.balance}, nil)
			totals := tt.totals
			entryRepo.EXPECT().GetAccountTotals(gomock.Any(), "acc-1").Return(&totals, nil)

			result, err := uc.ReconcileAccount(context.Background(), "acc-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.IsReconciled != tt.wantReconciled {
				t.Fatalf("expected reconciled=%v, got %v", tt.wantReconciled, result.IsReconciled)
			}

			if result.Difference != tt.wantDifference {
				t.Fatalf("expected difference %d, got %d", tt.wantDifference, result.Difference)
			}

			if result.LastChecked.IsZero() {
				t.Fatal("expected LastChecked timestamp to be set")
			}
		})
	}
}

func TestReconcileAccount_PropagatesError(t *testing.T) {
	t.Parallel()

	uc, accountRepo, _, _ := newMockedReconciliation(t)
	accountRepo.EXPECT().GetByID(gomock.Any(), "acc-1").Return(nil, fmt.Errorf("boom"))

	_, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("expected storage failure, got %v", err)
	}
}

func TestCheckLedgerConsistency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		balance   int64
		completed int64
		repoErr   error
		wantErr   error
	}{
		{name: "happy path balanced ledger", balance: 1000, completed: 1000},
		{name: "inconsistent ledger", balance: 1000, completed: 990, wantErr: usecase.ErrInconsistentLedger},
		{name: "repo error surfaces", repoErr: errors.New("db down"), wantErr: domain.ErrStorageFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc, _, _, ledgerRepo := newMockedReconciliation(t)
			ledgerRepo.EXPECT().CheckConsistency(gomock.Any()).Return(tt.balance, tt.completed, tt.repoErr)

			err := uc.CheckLedgerConsistency(context.Background())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGenerateReconciliationReport(t *testing.T) {
	t.Parallel()

	uc, accountRepo, entryRepo, ledgerRepo := newMockedReconciliation(t)

	accountRepo.EXPECT().List(gomock.Any(), 1000, 0).Return([]*domain.Account{
		{ID: "acc-1", Balance: 100},
		{ID: "acc-2", Balance: 70},
	}, nil)
	entryRepo.EXPECT().GetAccountTotals(gomock.Any(), "acc-1").
		Return(&usecase.AccountTotals{CompletedSum: 100, CompletedCount: 1, LastBalanceAfter: 100}, nil)
	entryRepo.EXPECT().GetAccountTotals(gomock.Any(), "acc-2").
		Return(&usecase.AccountTotals{CompletedSum: 50, CompletedCount: 1, LastBalanceAfter: 50}, nil)
	ledgerRepo.EXPECT().CheckConsistency(gomock.Any()).Return(int64(170), int64(150), nil)

	report, err := uc.GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalAccounts != 2 || report.ReconciledAccounts != 1 {
		t.Fatalf("unexpected counts: total=%d reconciled=%d", report.TotalAccounts, report.ReconciledAccounts)
	}

	if len(report.Discrepancies) != 1 || report.Discrepancies[0].AccountID != "acc-2" {
		t.Fatalf("expected acc-2 discrepancy, got %+v", report.Discrepancies)
	}

	if report.LedgerConsistent {
		t.Fatal("expected ledger to be reported inconsistent")
	}
}
