package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/growbucks/internal/adapter/http/dto"
	"github.com/iho/growbucks/internal/adapter/http/middleware"
	"github.com/iho/growbucks/internal/app"
	"github.com/iho/growbucks/internal/infrastructure/config"
)

func newMemoryApp(t *testing.T, env map[string]string) *app.App {
	t.Helper()

	t.Setenv("STORAGE_BACKEND", config.StorageMemory)
	t.Setenv("REDIS_URL", "")
	t.Setenv("AUTH_ENABLED", "false")
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := app.New(context.Background(), cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.Pool)
	return a
}

func call(t *testing.T, h http.Handler, method, path string, body any, callerID, role, accountID string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CallerIDHeader, callerID)
	req.Header.Set(middleware.CallerRoleHeader, role)
	if accountID != "" {
		req.Header.Set(middleware.AccountIDHeader, accountID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMemoryBackendServesAPIAndAccrues(t *testing.T) {
	ctx := context.Background()
	a := newMemoryApp(t, map[string]string{"RATE_LIMIT_RPS": "0"})
	router := a.Router(nil)
	assert.Nil(t, a.RateLimiter)

	rec := call(t, router, http.MethodPost, "/api/v1/accounts/", map[string]any{"name": "Emma"}, "parent-1", "parent", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var account dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))

	rec = call(t, router, http.MethodPost, "/api/v1/accounts/"+account.ID+"/deposits", map[string]any{"amount_cents": 10_000}, "parent-1", "parent", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, router, http.MethodGet, "/ready", nil, "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	result, err := a.Accrual.RunDailyAccrual(ctx, time.Now().Add(72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(303), result.TotalInterest)

	reconciliation, err := a.Reconciliation.ReconcileAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, reconciliation.IsReconciled)
	assert.Equal(t, int64(10_303), reconciliation.RecordedBalance)

	relay, closeRelay, err := a.OutboxRelay()
	require.NoError(t, err)
	defer closeRelay()

	published, err := relay.Drain(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, published, 3)
}

func TestRouterThrottlesEachCaller(t *testing.T) {
	a := newMemoryApp(t, map[string]string{"RATE_LIMIT_RPS": "0.001", "RATE_LIMIT_BURST": "3"})
	router := a.Router(nil)
	require.NotNil(t, a.RateLimiter)

	rec := call(t, router, http.MethodPost, "/api/v1/accounts/", map[string]any{"name": "Emma"}, "parent-1", "parent", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var account dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))

	balancePath := "/api/v1/accounts/" + account.ID + "/balance"
	for range 2 {
		rec = call(t, router, http.MethodGet, balancePath, nil, "parent-1", "parent", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = call(t, router, http.MethodGet, balancePath, nil, "parent-1", "parent", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// The child polling the same account has its own budget.
	rec = call(t, router, http.MethodGet, balancePath, nil, "kid-1", "child", account.ID)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
