package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/growbucks/internal/infrastructure/scheduler"
	"github.com/iho/growbucks/internal/usecase"
)

type accrualRunner interface {
	RunDailyAccrual(ctx context.Context, now time.Time) (*usecase.BatchResult, error)
}

type reportGenerator interface {
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

var errLedgerDrift = errors.New("reconciliation found discrepancies")

// accrualJob runs the daily batch. Per-account failures are logged and do not
// fail the job; the next run picks those accounts up again.
func accrualJob(runner accrualRunner, logger zerolog.Logger, now func() time.Time) scheduler.Job {
	return func(ctx context.Context) error {
		result, err := runner.RunDailyAccrual(ctx, now())
		if err != nil {
			return err
		}

		for _, accountErr := range result.Errors {
			logger.Warn().
				Err(accountErr.Err).
				Str("run_id", result.RunID).
				Str("account_id", accountErr.AccountID).
				Msg("account accrual failed")
		}

		logger.Info().
			Str("run_id", result.RunID).
			Int("processed", result.Processed).
			Int("skipped", result.Skipped).
			Int("failed", len(result.Errors)).
			Int64("total_interest", result.TotalInterest).
			Msg("daily accrual finished")

		return nil
	}
}

func reconciliationJob(reports reportGenerator, logger zerolog.Logger) scheduler.Job {
	return func(ctx context.Context) error {
		report, err := reports.GenerateReconciliationReport(ctx)
		if err != nil {
			return err
		}

		for _, d := range report.Discrepancies {
			logger.Error().
				Str("account_id", d.AccountID).
				Int64("recorded_balance", d.RecordedBalance).
				Int64("calculated_balance", d.CalculatedBalance).
				Int64("difference", d.Difference).
				Msg("balance does not match ledger")
		}

		if !report.LedgerConsistent || len(report.Discrepancies) > 0 {
			return errLedgerDrift
		}

		logger.Info().Int("accounts", report.TotalAccounts).Msg("ledger reconciled")
		return nil
	}
}
