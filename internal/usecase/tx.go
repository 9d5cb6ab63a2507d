package usecase

import (
	"context"
	"errors"

	"github.com/iho/growbucks/internal/domain"
)

// singleAttempt is the Retrier used when none is configured.
type singleAttempt struct{}

func (singleAttempt) Retry(_ context.Context, operation func() error) error {
	return operation()
}

func runInTx(ctx context.Context, txManager TransactionManager, retrier Retrier, fn func(context.Context, Transaction) error) error {
	if retrier == nil {
		retrier = singleAttempt{}
	}

	err := retrier.Retry(ctx, func() error {
		// Add transaction timeout
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return domain.StorageFailure(err)
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return domain.StorageFailure(err)
		}

		if err := tx.Commit(txCtx); err != nil {
			return domain.StorageFailure(err)
		}

		return nil
	})

	return domain.StorageFailure(err)
}

// Outcome labels an operation result for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrRateOutOfBounds),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidEntry):
		return "invalid"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrEntryNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotPending):
		return "not_pending"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, domain.ErrStorageFailure):
		return "storage_failure"
	default:
		return "error"
	}
}
