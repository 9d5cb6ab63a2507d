package domain

import "time"

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryKindDeposit    EntryKind = "deposit"
	EntryKindWithdrawal EntryKind = "withdrawal"
	EntryKindInterest   EntryKind = "interest"
	EntryKindAdjustment EntryKind = "adjustment"
)

// EntryStatus is the lifecycle state of a ledger entry.
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusCompleted EntryStatus = "completed"
	EntryStatusRejected  EntryStatus = "rejected"
)

// SystemActor is recorded as ProcessedBy for entries the system completes on its own.
const SystemActor = "system"

// LedgerEntry is a single balance-affecting event on an account.
// Amounts are signed cents; withdrawals are stored negative.
type LedgerEntry struct {
	ID           string
	AccountID    string
	Kind         EntryKind
	Amount       int64
	BalanceAfter int64
	Status       EntryStatus
	Description  string
	OccurredAt   time.Time
	ProcessedAt  *time.Time
	ProcessedBy  string
	CreatedAt    time.Time
}

// Validate checks the sign and status rules for the entry kind.
func (e *LedgerEntry) Validate() error {
	switch e.Kind {
	case EntryKindDeposit, EntryKindInterest:
		if e.Amount <= 0 {
			return ErrInvalidAmount
		}
	case EntryKindWithdrawal:
		if e.Amount >= 0 {
			return ErrInvalidAmount
		}
	case EntryKindAdjustment:
		if e.Amount == 0 {
			return ErrInvalidAmount
		}
	default:
		return ErrInvalidEntry
	}

	if e.Status == EntryStatusPending && e.Kind != EntryKindWithdrawal {
		return ErrInvalidEntry
	}

	if e.BalanceAfter < 0 {
		return ErrInsufficientBalance
	}

	return nil
}

// IsPending reports whether the entry still awaits resolution.
func (e *LedgerEntry) IsPending() bool {
	return e.Status == EntryStatusPending
}

// Complete transitions a pending entry to completed with the balance it produced.
func (e *LedgerEntry) Complete(balanceAfter int64, by string, at time.Time) error {
	if !e.IsPending() {
		return ErrNotPending
	}

	e.Status = EntryStatusCompleted
	e.BalanceAfter = balanceAfter
	e.ProcessedBy = by
	e.ProcessedAt = &at

	return nil
}

// Reject transitions a pending entry to rejected. A non-empty reason is appended to
// the description.
func (e *LedgerEntry) Reject(reason, by string, at time.Time) error {
	if !e.IsPending() {
		return ErrNotPending
	}

	e.Status = EntryStatusRejected
	e.ProcessedBy = by
	e.ProcessedAt = &at

	if reason != "" {
		if e.Description == "" {
			e.Description = "Rejected: " + reason
		} else {
			e.Description = e.Description + " (Rejected: " + reason + ")"
		}
	}

	return nil
}

// Magnitude returns the absolute amount in cents.
func (e *LedgerEntry) Magnitude() int64 {
	if e.Amount < 0 {
		return -e.Amount
	}
	return e.Amount
}
