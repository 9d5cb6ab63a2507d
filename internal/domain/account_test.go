package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		debitAmount int64
		expectError bool
	}{
		{
			name:        "debit more than balance",
			balance:     100,
			debitAmount: 150,
			expectError: true,
		},
		{
			name:        "debit exact balance",
			balance:     100,
			debitAmount: 100,
			expectError: false,
		},
		{
			name:        "debit less than balance",
			balance:     100,
			debitAmount: 50,
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectError && !errors.Is(err, ErrInsufficientBalance) {
				t.Errorf("expected ErrInsufficientBalance, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ApplyDebit(t *testing.T) {
	acc := &Account{Balance: 100}
	if got := acc.ApplyDebit(30); got != 70 {
		t.Errorf("expected balance 70, got %d", got)
	}
}

func TestAccount_ApplyCredit(t *testing.T) {
	acc := &Account{Balance: 100}
	got, err := acc.ApplyCredit(30)
	if err != nil || got != 130 {
		t.Errorf("expected balance 130, got %d (%v)", got, err)
	}

	acc.Balance = math.MaxInt64 - 10
	if _, err := acc.ApplyCredit(11); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestAccount_EligibleForAccrual(t *testing.T) {
	deletedAt := time.Now()

	tests := []struct {
		name    string
		account Account
		want    bool
	}{
		{name: "positive balance", account: Account{Balance: 1}, want: true},
		{name: "zero balance", account: Account{Balance: 0}, want: false},
		{name: "paused", account: Account{Balance: 100, InterestPaused: true}, want: false},
		{name: "deleted", account: Account{Balance: 100, DeletedAt: &deletedAt}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.EligibleForAccrual(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAccount_RebaseAccrual(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

	t.Run("moves stale marker to start of today", func(t *testing.T) {
		acc := &Account{LastAccrualAt: now.AddDate(0, 0, -7)}
		acc.RebaseAccrual(now, time.UTC)

		want := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
		if !acc.LastAccrualAt.Equal(want) {
			t.Errorf("expected %v, got %v", want, acc.LastAccrualAt)
		}
	})

	t.Run("never moves marker backwards", func(t *testing.T) {
		marker := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
		acc := &Account{LastAccrualAt: marker}
		acc.RebaseAccrual(now, time.UTC)

		if !acc.LastAccrualAt.Equal(marker) {
			t.Errorf("expected marker to stay at %v, got %v", marker, acc.LastAccrualAt)
		}
	})
}

func TestAccount_LiveBalance(t *testing.T) {
	last := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	acc := &Account{Balance: 10000, DailyRate: decimal.RequireFromString("0.01"), LastAccrualAt: last}

	got := acc.LiveBalance(last.Add(12 * time.Hour))
	if got != 10050 {
		t.Errorf("expected 10050, got %v", got)
	}

	acc.InterestPaused = true
	if got := acc.LiveBalance(last.Add(12 * time.Hour)); got != 10000 {
		t.Errorf("expected paused account to show 10000, got %v", got)
	}
}
