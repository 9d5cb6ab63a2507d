package dto

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/growbucks/internal/usecase"
)

func boolPtr(b bool) *bool { return &b }

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		req         any
		wantErr     bool
		wantDetails []string
	}{
		{
			name: "valid account",
			req:  &CreateAccountRequest{Name: "Emma"},
		},
		{
			name:        "account without name",
			req:         &CreateAccountRequest{},
			wantErr:     true,
			wantDetails: []string{"Name"},
		},
		{
			name:        "account name too long",
			req:         &CreateAccountRequest{Name: strings.Repeat("x", 51)},
			wantErr:     true,
			wantDetails: []string{"Name"},
		},
		{
			name: "empty update is allowed",
			req:  &UpdateAccountRequest{},
		},
		{
			name: "valid deposit",
			req:  &MoneyRequest{AmountCents: 500, Description: "Birthday"},
		},
		{
			name:        "zero amount",
			req:         &MoneyRequest{},
			wantErr:     true,
			wantDetails: []string{"AmountCents"},
		},
		{
			name:        "negative amount",
			req:         &MoneyRequest{AmountCents: -5},
			wantErr:     true,
			wantDetails: []string{"AmountCents"},
		},
		{
			name:        "resolve without decision",
			req:         &ResolveRequest{Reason: "no"},
			wantErr:     true,
			wantDetails: []string{"Approved"},
		},
		{
			name: "explicit rejection",
			req:  &ResolveRequest{Approved: boolPtr(false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			details := ValidationDetails(err)
			for _, field := range tt.wantDetails {
				assert.Contains(t, details, field)
			}
		})
	}
}

func TestValidationDetailsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("boom")))
	assert.Nil(t, ValidationDetails(nil))
}

func TestRequestConversions(t *testing.T) {
	rate := decimal.RequireFromString("0.02")
	name := "College"

	create := (&CreateAccountRequest{Name: "Emma", DailyRate: &rate}).ToUseCaseInput("parent-1")
	assert.Equal(t, usecase.CreateAccountInput{ParentID: "parent-1", Name: "Emma", DailyRate: &rate}, create)

	update := (&UpdateAccountRequest{Name: &name, InterestPaused: boolPtr(true)}).ToUseCaseInput("acc-1")
	assert.Equal(t, "acc-1", update.AccountID)
	assert.Equal(t, &name, update.Name)
	assert.Nil(t, update.DailyRate)
	assert.True(t, *update.InterestPaused)

	money := &MoneyRequest{AmountCents: 250, Description: "Toy"}
	assert.Equal(t, usecase.DepositInput{AccountID: "acc-1", Amount: 250, Note: "Toy", CallerID: "parent-1"},
		money.ToDepositInput("acc-1", "parent-1"))

	withdraw := money.ToWithdrawInput("acc-1", "child-1", true)
	assert.True(t, withdraw.RequestedByOwner)
	assert.Equal(t, int64(250), withdraw.Amount)

	resolve := (&ResolveRequest{Approved: boolPtr(true), Reason: "ok"}).ToUseCaseInput("entry-1", "parent-1")
	assert.Equal(t, usecase.ResolveInput{EntryID: "entry-1", Approve: true, ResolverID: "parent-1", Reason: "ok"}, resolve)
}
