package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/growbucks/internal/adapter/http/dto"
	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

type accrualServiceStub struct {
	runFn  func(ctx context.Context, now time.Time) (*usecase.BatchResult, error)
	runsFn func(ctx context.Context, limit int) ([]*domain.InterestRun, error)
}

func (s *accrualServiceStub) RunDailyAccrual(ctx context.Context, now time.Time) (*usecase.BatchResult, error) {
	return s.runFn(ctx, now)
}

func (s *accrualServiceStub) ListRuns(ctx context.Context, limit int) ([]*domain.InterestRun, error) {
	return s.runsFn(ctx, limit)
}

type reconServiceStub struct {
	accountFn func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	reportFn  func(ctx context.Context) (*usecase.ReconciliationReport, error)
}

func (s *reconServiceStub) ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
	return s.accountFn(ctx, accountID)
}

func (s *reconServiceStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.reportFn(ctx)
}

func TestAccrualHandler_Run(t *testing.T) {
	now := time.Date(2024, 1, 4, 1, 0, 0, 0, time.UTC)

	handler := NewAccrualHandler(&accrualServiceStub{
		runFn: func(ctx context.Context, at time.Time) (*usecase.BatchResult, error) {
			assert.True(t, at.Equal(now))
			return &usecase.BatchResult{
				RunID:         "run-1",
				Processed:     2,
				Postings:      3,
				TotalInterest: 303,
				Errors:        []usecase.AccountError{{AccountID: "acc-3", Err: domain.ErrConcurrencyConflict}},
			}, nil
		},
	})
	handler.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	handler.Run(rec, httptest.NewRequest(http.MethodPost, "/internal/accrual/run", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.AccrualRunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Processed)
	assert.Equal(t, int64(303), resp.TotalInterestCents)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "acc-3", resp.Errors[0].AccountID)
}

func TestAccrualHandler_RunListFailure(t *testing.T) {
	handler := NewAccrualHandler(&accrualServiceStub{
		runFn: func(ctx context.Context, at time.Time) (*usecase.BatchResult, error) {
			return &usecase.BatchResult{}, domain.StorageFailure(errors.New("connection refused"))
		},
	})

	rec := httptest.NewRecorder()
	handler.Run(rec, httptest.NewRequest(http.MethodPost, "/internal/accrual/run", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAccrualHandler_RunsClampsLimit(t *testing.T) {
	var gotLimit int
	handler := NewAccrualHandler(&accrualServiceStub{
		runsFn: func(ctx context.Context, limit int) ([]*domain.InterestRun, error) {
			gotLimit = limit
			return []*domain.InterestRun{{ID: "run-1", Processed: 4}}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Runs(rec, httptest.NewRequest(http.MethodGet, "/internal/accrual/runs?limit=5000", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, gotLimit)

	var resp []dto.InterestRunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 4, resp[0].Processed)
}

func TestReconciliationHandler_Account(t *testing.T) {
	handler := NewReconciliationHandler(&reconServiceStub{
		accountFn: func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
			return &usecase.ReconciliationResult{AccountID: accountID, RecordedBalance: 100, CalculatedBalance: 100, IsReconciled: true}, nil
		},
	}, ownedAccounts(testAccount()))

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/reconcile", nil)
	req = setChiURLParam(req, "id", "acc-1")
	req = withCaller(req, parent("parent-1"))
	rec := httptest.NewRecorder()

	handler.Account(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsReconciled)
}

func TestReconciliationHandler_Report(t *testing.T) {
	tests := []struct {
		name     string
		report   *usecase.ReconciliationReport
		expected int
	}{
		{
			name:     "consistent",
			report:   &usecase.ReconciliationReport{TotalAccounts: 2, ReconciledAccounts: 2, LedgerConsistent: true},
			expected: http.StatusOK,
		},
		{
			name: "discrepancy",
			report: &usecase.ReconciliationReport{
				TotalAccounts:      2,
				ReconciledAccounts: 1,
				Discrepancies:      []*usecase.ReconciliationResult{{AccountID: "acc-2", Difference: 20}},
				LedgerConsistent:   true,
			},
			expected: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewReconciliationHandler(&reconServiceStub{
				reportFn: func(ctx context.Context) (*usecase.ReconciliationReport, error) { return tt.report, nil },
			}, nil)

			rec := httptest.NewRecorder()
			handler.Report(rec, httptest.NewRequest(http.MethodGet, "/internal/reconciliation", nil))

			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	healthy := NewHealthHandler(map[string]Pinger{
		"postgres": PingFunc(func(ctx context.Context) error { return nil }),
		"redis":    nil,
	})

	rec := httptest.NewRecorder()
	healthy.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	healthy.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)

	unhealthy := NewHealthHandler(map[string]Pinger{
		"redis": PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	})

	rec = httptest.NewRecorder()
	unhealthy.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
