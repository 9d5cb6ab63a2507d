package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/growbucks/internal/adapter/http/dto"
	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

// LedgerService defines the money movements needed by LedgerHandler.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.LedgerEntry, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.LedgerEntry, error)
	ResolvePending(ctx context.Context, input usecase.ResolveInput) (*domain.LedgerEntry, error)
}

// EntryReader loads a single entry.
type EntryReader interface {
	GetEntry(ctx context.Context, id string) (*domain.LedgerEntry, error)
}

// LedgerHandler handles deposits, withdrawals and their resolution.
type LedgerHandler struct {
	ledgerUC LedgerService
	accounts AccountReader
	entries  EntryReader
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, accounts AccountReader, entries EntryReader) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, accounts: accounts, entries: entries}
}

// Deposit credits the account. Only the owning parent may deposit.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	caller, account, err := authorizeAccount(r.Context(), h.accounts, chi.URLParam(r, "id"), true)
	if err != nil {
		respondError(w, r, "failed to deposit", err)
		return
	}

	var req dto.MoneyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	entry, err := h.ledgerUC.Deposit(r.Context(), req.ToDepositInput(account.ID, caller.ID))
	if err != nil {
		respondError(w, r, "failed to deposit", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Withdraw debits the account when the parent asks, or records a pending request
// when the child does.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	caller, account, err := authorizeAccount(r.Context(), h.accounts, chi.URLParam(r, "id"), false)
	if err != nil {
		respondError(w, r, "failed to withdraw", err)
		return
	}

	var req dto.MoneyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input := req.ToWithdrawInput(account.ID, caller.ID, caller.IsOwner(account))

	entry, err := h.ledgerUC.Withdraw(r.Context(), input)
	if err != nil {
		respondError(w, r, "failed to withdraw", err)
		return
	}

	status := http.StatusCreated
	if entry.IsPending() {
		status = http.StatusAccepted
	}

	writeJSON(w, status, dto.EntryFromDomain(entry))
}

// Resolve approves or rejects a pending withdrawal on one of the parent's accounts.
func (h *LedgerHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if _, err := requireParent(r.Context()); err != nil {
		respondError(w, r, "failed to resolve withdrawal", err)
		return
	}

	entry, err := h.entries.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "failed to resolve withdrawal", err)
		return
	}

	caller, _, err := authorizeAccount(r.Context(), h.accounts, entry.AccountID, true)
	if err != nil {
		respondError(w, r, "failed to resolve withdrawal", err)
		return
	}

	var req dto.ResolveRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	resolved, err := h.ledgerUC.ResolvePending(r.Context(), req.ToUseCaseInput(entry.ID, caller.ID))
	if err != nil {
		respondError(w, r, "failed to resolve withdrawal", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(resolved))
}
