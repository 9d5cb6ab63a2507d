package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/growbucks/internal/adapter/http/dto"
	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

const defaultProjectionDays = 30

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, parentID string) ([]*domain.Account, error)
	UpdateSettings(ctx context.Context, input usecase.UpdateSettingsInput) (*domain.Account, error)
	DeleteAccount(ctx context.Context, input usecase.DeleteAccountInput) error
	GetLiveBalance(ctx context.Context, id string, now time.Time) (*usecase.LiveBalance, error)
	ProjectBalance(ctx context.Context, id string, days int) (*usecase.Projection, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	now       func() time.Time
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, now: time.Now}
}

// Create creates a new account owned by the calling parent.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := requireParent(r.Context())
	if err != nil {
		respondError(w, r, "failed to create account", err)
		return
	}

	var req dto.CreateAccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(caller.ID))
	if err != nil {
		respondError(w, r, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, account, err := authorizeAccount(r.Context(), h.accountUC, chi.URLParam(r, "id"), false)
	if err != nil {
		respondError(w, r, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the caller's accounts: every active account of a parent, or the child's own.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := requireCaller(r.Context())
	if err != nil {
		respondError(w, r, "failed to list accounts", err)
		return
	}

	var accounts []*domain.Account
	if caller.Role == domain.RoleParent {
		accounts, err = h.accountUC.ListAccounts(r.Context(), caller.ID)
	} else {
		var account *domain.Account
		account, err = h.accountUC.GetAccount(r.Context(), caller.AccountID)
		if account != nil {
			accounts = []*domain.Account{account}
		}
	}
	if err != nil {
		respondError(w, r, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    len(accounts),
	})
}

// Update renames, re-rates, pauses or resumes an account.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, account, err := authorizeAccount(r.Context(), h.accountUC, chi.URLParam(r, "id"), true)
	if err != nil {
		respondError(w, r, "failed to update account", err)
		return
	}

	var req dto.UpdateAccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	updated, err := h.accountUC.UpdateSettings(r.Context(), req.ToUseCaseInput(account.ID))
	if err != nil {
		respondError(w, r, "failed to update account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(updated))
}

// Delete soft-deletes an account. Funded accounts need ?force=true.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, account, err := authorizeAccount(r.Context(), h.accountUC, chi.URLParam(r, "id"), true)
	if err != nil {
		respondError(w, r, "failed to delete account", err)
		return
	}

	err = h.accountUC.DeleteAccount(r.Context(), usecase.DeleteAccountInput{
		AccountID: account.ID,
		Force:     r.URL.Query().Get("force") == "true",
	})
	if err != nil {
		respondError(w, r, "failed to delete account", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LiveBalance returns the interpolated display balance.
func (h *AccountHandler) LiveBalance(w http.ResponseWriter, r *http.Request) {
	_, account, err := authorizeAccount(r.Context(), h.accountUC, chi.URLParam(r, "id"), false)
	if err != nil {
		respondError(w, r, "failed to get balance", err)
		return
	}

	balance, err := h.accountUC.GetLiveBalance(r.Context(), account.ID, h.now())
	if err != nil {
		respondError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LiveBalanceFromUseCase(balance))
}

// Projection projects the balance ?days ahead.
func (h *AccountHandler) Projection(w http.ResponseWriter, r *http.Request) {
	_, account, err := authorizeAccount(r.Context(), h.accountUC, chi.URLParam(r, "id"), false)
	if err != nil {
		respondError(w, r, "failed to project balance", err)
		return
	}

	days := parseIntQuery(r, "days", defaultProjectionDays)

	projection, err := h.accountUC.ProjectBalance(r.Context(), account.ID, days)
	if err != nil {
		respondError(w, r, "failed to project balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ProjectionFromUseCase(projection))
}
