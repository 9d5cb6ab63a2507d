package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/growbucks/internal/adapter/http/dto"
	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

func TestLedgerHandler_Deposit(t *testing.T) {
	tests := []struct {
		name     string
		caller   *domain.Caller
		body     string
		svcErr   error
		expected int
	}{
		{name: "parent deposits", caller: parent("parent-1"), body: `{"amount_cents":500}`, expected: http.StatusCreated},
		{name: "child may not deposit", caller: child("acc-1"), body: `{"amount_cents":500}`, expected: http.StatusForbidden},
		{name: "zero amount", caller: parent("parent-1"), body: `{"amount_cents":0}`, expected: http.StatusBadRequest},
		{name: "over the cap", caller: parent("parent-1"), body: `{"amount_cents":1000001}`, svcErr: domain.ErrInvalidAmount, expected: http.StatusBadRequest},
		{name: "lock timeout", caller: parent("parent-1"), body: `{"amount_cents":500}`, svcErr: domain.ErrConcurrencyConflict, expected: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.DepositInput
			handler := NewLedgerHandler(&ledgerServiceStub{
				depositFn: func(ctx context.Context, input usecase.DepositInput) (*domain.LedgerEntry, error) {
					captured = input
					if tt.svcErr != nil {
						return nil, tt.svcErr
					}
					return &domain.LedgerEntry{ID: "e1", AccountID: input.AccountID, Amount: input.Amount, Status: domain.EntryStatusCompleted}, nil
				},
			}, ownedAccounts(testAccount()), nil)

			req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/deposits", bytes.NewBufferString(tt.body))
			req = setChiURLParam(req, "id", "acc-1")
			req = withCaller(req, tt.caller)
			rec := httptest.NewRecorder()

			handler.Deposit(rec, req)

			require.Equal(t, tt.expected, rec.Code, rec.Body.String())
			if tt.expected == http.StatusCreated {
				assert.Equal(t, "parent-1", captured.CallerID)
				assert.Equal(t, int64(500), captured.Amount)
			}
		})
	}
}

func TestLedgerHandler_WithdrawDerivesOwnership(t *testing.T) {
	tests := []struct {
		name        string
		caller      *domain.Caller
		wantOwner   bool
		wantStatus  int
		entryStatus domain.EntryStatus
	}{
		{name: "child request stays pending", caller: child("acc-1"), wantOwner: true, wantStatus: http.StatusAccepted, entryStatus: domain.EntryStatusPending},
		{name: "parent withdrawal completes", caller: parent("parent-1"), wantStatus: http.StatusCreated, entryStatus: domain.EntryStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewLedgerHandler(&ledgerServiceStub{
				withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*domain.LedgerEntry, error) {
					assert.Equal(t, tt.wantOwner, input.RequestedByOwner)
					assert.Equal(t, tt.caller.ID, input.CallerID)
					return &domain.LedgerEntry{ID: "e1", Amount: -input.Amount, Status: tt.entryStatus}, nil
				},
			}, ownedAccounts(testAccount()), nil)

			req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/withdrawals", bytes.NewBufferString(`{"amount_cents":250}`))
			req = setChiURLParam(req, "id", "acc-1")
			req = withCaller(req, tt.caller)
			rec := httptest.NewRecorder()

			handler.Withdraw(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var resp dto.EntryResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, int64(-250), resp.AmountCents)
		})
	}
}

func TestLedgerHandler_WithdrawInsufficientBalance(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*domain.LedgerEntry, error) {
			return nil, domain.ErrInsufficientBalance
		},
	}, ownedAccounts(testAccount()), nil)

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/withdrawals", bytes.NewBufferString(`{"amount_cents":99999}`))
	req = setChiURLParam(req, "id", "acc-1")
	req = withCaller(req, child("acc-1"))
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLedgerHandler_Resolve(t *testing.T) {
	pending := &domain.LedgerEntry{ID: "e1", AccountID: "acc-1", Kind: domain.EntryKindWithdrawal, Amount: -250, Status: domain.EntryStatusPending}
	entries := &entryServiceStub{getFn: func(ctx context.Context, id string) (*domain.LedgerEntry, error) {
		if id != "e1" {
			return nil, domain.ErrEntryNotFound
		}
		return pending, nil
	}}

	tests := []struct {
		name     string
		caller   *domain.Caller
		entryID  string
		body     string
		svcErr   error
		expected int
	}{
		{name: "approve", caller: parent("parent-1"), entryID: "e1", body: `{"approved":true}`, expected: http.StatusOK},
		{name: "reject with reason", caller: parent("parent-1"), entryID: "e1", body: `{"approved":false,"reason":"not today"}`, expected: http.StatusOK},
		{name: "missing decision", caller: parent("parent-1"), entryID: "e1", body: `{}`, expected: http.StatusBadRequest},
		{name: "child cannot resolve", caller: child("acc-1"), entryID: "e1", body: `{"approved":true}`, expected: http.StatusForbidden},
		{name: "other parent", caller: parent("parent-2"), entryID: "e1", body: `{"approved":true}`, expected: http.StatusForbidden},
		{name: "unknown entry", caller: parent("parent-1"), entryID: "e2", body: `{"approved":true}`, expected: http.StatusNotFound},
		{name: "already resolved", caller: parent("parent-1"), entryID: "e1", body: `{"approved":true}`, svcErr: domain.ErrNotPending, expected: http.StatusConflict},
		{name: "balance dropped", caller: parent("parent-1"), entryID: "e1", body: `{"approved":true}`, svcErr: domain.ErrInsufficientBalance, expected: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewLedgerHandler(&ledgerServiceStub{
				resolveFn: func(ctx context.Context, input usecase.ResolveInput) (*domain.LedgerEntry, error) {
					if tt.svcErr != nil {
						return nil, tt.svcErr
					}
					assert.Equal(t, "parent-1", input.ResolverID)
					resolved := *pending
					if input.Approve {
						resolved.Status = domain.EntryStatusCompleted
					} else {
						resolved.Status = domain.EntryStatusRejected
					}
					return &resolved, nil
				},
			}, ownedAccounts(testAccount()), entries)

			req := httptest.NewRequest(http.MethodPost, "/entries/"+tt.entryID+"/resolve", bytes.NewBufferString(tt.body))
			req = setChiURLParam(req, "id", tt.entryID)
			req = withCaller(req, tt.caller)
			rec := httptest.NewRecorder()

			handler.Resolve(rec, req)

			require.Equal(t, tt.expected, rec.Code, rec.Body.String())
		})
	}
}
