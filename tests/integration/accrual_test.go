package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
	"github.com/iho/growbucks/tests/testutil"
)

func TestDailyAccrualCatchUpIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	a := testDB.NewApp(ctx)

	saver := testutil.CreateFundedAccount(t, ctx, a, "parent-1", 10_000)
	small := testutil.CreateFundedAccount(t, ctx, a, "parent-1", 50)
	testDB.BackdateAccrual(ctx, saver.ID, 3)
	testDB.BackdateAccrual(ctx, small.ID, 3)

	now := time.Now().UTC()

	result, err := a.Accrual.RunDailyAccrual(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, int64(303), result.TotalInterest)

	reloaded, err := a.Accounts.GetAccount(ctx, saver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10_303), reloaded.Balance)
	assert.True(t, reloaded.LastAccrualAt.Equal(domain.StartOfDay(now, time.UTC)))

	// Sub-cent interest never posts.
	reloadedSmall, err := a.Accounts.GetAccount(ctx, small.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), reloadedSmall.Balance)

	entries, err := a.Entries.GetEntriesByAccount(ctx, usecase.GetEntriesByAccountInput{AccountID: saver.ID})
	require.NoError(t, err)
	interest := 0
	for _, e := range entries {
		if e.Kind == domain.EntryKindInterest {
			interest++
		}
	}
	assert.Equal(t, 3, interest)

	// A second run on the same day changes nothing.
	again, err := a.Accrual.RunDailyAccrual(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, again.TotalInterest)

	reloaded, err = a.Accounts.GetAccount(ctx, saver.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10_303), reloaded.Balance)

	runs, err := a.Accrual.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	report, err := a.Reconciliation.GenerateReconciliationReport(ctx)
	require.NoError(t, err)
	assert.True(t, report.LedgerConsistent)
	assert.Empty(t, report.Discrepancies)
}
