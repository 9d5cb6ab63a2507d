package usecase

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultMaxAmountCents is the largest single deposit or withdrawal.
	DefaultMaxAmountCents = 1_000_000

	// DefaultMaxAccountsPerParent caps active child accounts per parent.
	DefaultMaxAccountsPerParent = 10

	// DefaultAccrualPageSize is how many eligible accounts the batch reads per page.
	DefaultAccrualPageSize = 500

	// DefaultSnapshotTTL is how long an account snapshot stays cached.
	DefaultSnapshotTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyInFlight is the value a claimed idempotency key holds until the
	// first response is stored.
	IdempotencyInFlight = "processing"
)

// Policy holds the business limits shared by the use cases.
type Policy struct {
	MaxAmountCents       int64
	MinDailyRate         decimal.Decimal
	MaxDailyRate         decimal.Decimal
	DefaultDailyRate     decimal.Decimal
	MaxAccountsPerParent int
	// Location defines calendar days for accrual.
	Location *time.Location
}

// DefaultPolicy returns the stock limits: amounts up to 10,000.00, rates in
// [0.1%, 5%] per day defaulting to 1%, days in UTC.
func DefaultPolicy() Policy {
	return Policy{
		MaxAmountCents:       DefaultMaxAmountCents,
		MinDailyRate:         decimal.RequireFromString("0.001"),
		MaxDailyRate:         decimal.RequireFromString("0.05"),
		DefaultDailyRate:     decimal.RequireFromString("0.01"),
		MaxAccountsPerParent: DefaultMaxAccountsPerParent,
		Location:             time.UTC,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
