package dto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/growbucks/internal/usecase"
)

var validate = validator.New()

// Validate checks the struct tags of a decoded request.
func Validate(req any) error {
	return validate.Struct(req)
}

// ValidationDetails maps each failing field to the rule it broke. Non-validation
// errors yield nil.
func ValidationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fmt.Sprintf("failed on '%s' rule", fe.Tag())
	}
	return details
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name      string           `json:"name"       validate:"required,max=50"`
	DailyRate *decimal.Decimal `json:"daily_rate,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(parentID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		ParentID:  parentID,
		Name:      r.Name,
		DailyRate: r.DailyRate,
	}
}

// UpdateAccountRequest represents a partial settings update.
type UpdateAccountRequest struct {
	Name           *string          `json:"name,omitempty"            validate:"omitempty,max=50"`
	DailyRate      *decimal.Decimal `json:"daily_rate,omitempty"`
	InterestPaused *bool            `json:"interest_paused,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput(accountID string) usecase.UpdateSettingsInput {
	return usecase.UpdateSettingsInput{
		AccountID:      accountID,
		Name:           r.Name,
		DailyRate:      r.DailyRate,
		InterestPaused: r.InterestPaused,
	}
}

// MoneyRequest is the body of a deposit or withdrawal.
type MoneyRequest struct {
	AmountCents int64  `json:"amount_cents"          validate:"required,gt=0"`
	Description string `json:"description,omitempty" validate:"max=200"`
}

// ToDepositInput converts to a deposit.
func (r *MoneyRequest) ToDepositInput(accountID, callerID string) usecase.DepositInput {
	return usecase.DepositInput{
		AccountID: accountID,
		Amount:    r.AmountCents,
		Note:      r.Description,
		CallerID:  callerID,
	}
}

// ToWithdrawInput converts to a withdrawal. Requests by the account owner stay pending.
func (r *MoneyRequest) ToWithdrawInput(accountID, callerID string, byOwner bool) usecase.WithdrawInput {
	return usecase.WithdrawInput{
		AccountID:        accountID,
		Amount:           r.AmountCents,
		Note:             r.Description,
		RequestedByOwner: byOwner,
		CallerID:         callerID,
	}
}

// ResolveRequest approves or rejects a pending withdrawal.
type ResolveRequest struct {
	Approved *bool  `json:"approved"         validate:"required"`
	Reason   string `json:"reason,omitempty" validate:"max=200"`
}

// ToUseCaseInput converts to use case input.
func (r *ResolveRequest) ToUseCaseInput(entryID, resolverID string) usecase.ResolveInput {
	return usecase.ResolveInput{
		EntryID:    entryID,
		Approve:    *r.Approved,
		ResolverID: resolverID,
		Reason:     r.Reason,
	}
}
