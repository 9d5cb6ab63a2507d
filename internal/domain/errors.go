package domain

import (
	"errors"
	"fmt"
)

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRateOutOfBounds     = errors.New("daily rate out of bounds")
	ErrAccountLimitReached = errors.New("maximum number of accounts reached")
	ErrNonZeroBalance      = errors.New("account balance is not zero")
	ErrAmountOverflow      = errors.New("amount exceeds representable range")

	// Ledger errors
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEntryNotFound = errors.New("ledger entry not found")
	ErrNotPending    = errors.New("ledger entry is not pending")
	ErrInvalidEntry  = errors.New("invalid ledger entry")
	ErrForbidden     = errors.New("caller may not perform this operation")

	// Accrual errors
	ErrInterestRunNotFound = errors.New("interest run not found")

	// Infrastructure errors surfaced to callers
	ErrConcurrencyConflict = errors.New("concurrent modification, retry")
	ErrStorageFailure      = errors.New("storage failure")
)

// StorageFailure wraps a data-access error so that both ErrStorageFailure and the
// original cause match with errors.Is. Domain errors pass through untouched.
func StorageFailure(err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

// IsDomainError reports whether err is one of the typed errors of this package.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrAccountNotFound, ErrInsufficientBalance, ErrRateOutOfBounds,
		ErrAccountLimitReached, ErrNonZeroBalance, ErrInvalidAmount,
		ErrEntryNotFound, ErrNotPending, ErrInvalidEntry, ErrForbidden,
		ErrConcurrencyConflict, ErrStorageFailure, ErrInvalidAccountName,
		ErrInvalidProjectionDays, ErrInterestRunNotFound, ErrAmountOverflow,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
