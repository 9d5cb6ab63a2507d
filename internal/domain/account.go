package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a child's savings account. Balances are integer cents.
type Account struct {
	ID             string
	ParentID       string
	Name           string
	Balance        int64
	DailyRate      decimal.Decimal
	InterestPaused bool
	LastAccrualAt  time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount int64) error {
	if amount > a.Balance {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount int64) int64 {
	return a.Balance - amount
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount int64) (int64, error) {
	return AddCents(a.Balance, amount)
}

// IsDeleted reports whether the account has been soft-deleted.
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// EligibleForAccrual reports whether the accrual engine should look at the account.
func (a *Account) EligibleForAccrual() bool {
	return !a.InterestPaused && a.Balance > 0 && !a.IsDeleted()
}

// LiveBalance is the interpolated display balance at now.
func (a *Account) LiveBalance(now time.Time) float64 {
	return Interpolate(a.Balance, a.DailyRate, a.LastAccrualAt, now, a.InterestPaused)
}

// RebaseAccrual moves the accrual marker forward to the start of now's day, never back.
// Used when the account starts earning again (resume, first deposit into an empty
// account) so that days without earnings are not paid retroactively.
func (a *Account) RebaseAccrual(now time.Time, loc *time.Location) {
	start := StartOfDay(now, loc)
	if start.After(a.LastAccrualAt) {
		a.LastAccrualAt = start
	}
}
