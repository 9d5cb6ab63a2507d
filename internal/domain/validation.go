package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountName    = errors.New("invalid account name")
	ErrInvalidProjectionDays = errors.New("invalid projection horizon")
)

// Validation constants
const (
	MinAccountNameLength = 1
	MaxAccountNameLength = 50
	MinAmountCents       = 1
	MaxProjectionDays    = 3650
)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if utf8.RuneCountInString(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateAmount checks a deposit or withdrawal amount in cents against [1, maxCents].
func ValidateAmount(amount, maxCents int64) error {
	if amount < MinAmountCents {
		return fmt.Errorf("%w: minimum amount is %d cent", ErrInvalidAmount, MinAmountCents)
	}

	if maxCents > 0 && amount > maxCents {
		return fmt.Errorf("%w: maximum amount is %d cents", ErrInvalidAmount, maxCents)
	}

	return nil
}

// ValidateDailyRate checks that rate lies in [minRate, maxRate].
func ValidateDailyRate(rate, minRate, maxRate decimal.Decimal) error {
	if rate.LessThan(minRate) || rate.GreaterThan(maxRate) {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrRateOutOfBounds, rate, minRate, maxRate)
	}

	return nil
}

// ValidateProjectionDays checks a balance projection horizon.
func ValidateProjectionDays(days int) error {
	if days < 1 || days > MaxProjectionDays {
		return fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidProjectionDays, MaxProjectionDays)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
