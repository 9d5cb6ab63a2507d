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

// EntryService defines the entry reads needed by EntryHandler.
type EntryService interface {
	GetEntriesByAccount(ctx context.Context, input usecase.GetEntriesByAccountInput) ([]*domain.LedgerEntry, error)
	ListPending(ctx context.Context, parentID string) (*usecase.PendingSummary, error)
	GetInterestSummary(ctx context.Context, accountID string, now time.Time) (*usecase.InterestSummary, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC  EntryService
	accounts AccountReader
	now      func() time.Time
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService, accounts AccountReader) *EntryHandler {
	return &EntryHandler{entryUC: entryUC, accounts: accounts, now: time.Now}
}

// ListByAccount lists entries for an account, newest first.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	_, account, err := authorizeAccount(r.Context(), h.accounts, chi.URLParam(r, "id"), false)
	if err != nil {
		respondError(w, r, "failed to list entries", err)
		return
	}

	entries, err := h.entryUC.GetEntriesByAccount(r.Context(), usecase.GetEntriesByAccountInput{
		AccountID: account.ID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		respondError(w, r, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Count:   len(entries),
	})
}

// InterestSummary returns interest earned today and this month.
func (h *EntryHandler) InterestSummary(w http.ResponseWriter, r *http.Request) {
	_, account, err := authorizeAccount(r.Context(), h.accounts, chi.URLParam(r, "id"), false)
	if err != nil {
		respondError(w, r, "failed to summarize interest", err)
		return
	}

	summary, err := h.entryUC.GetInterestSummary(r.Context(), account.ID, h.now())
	if err != nil {
		respondError(w, r, "failed to summarize interest", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InterestSummaryFromUseCase(summary))
}

// Pending lists withdrawals awaiting the calling parent.
func (h *EntryHandler) Pending(w http.ResponseWriter, r *http.Request) {
	caller, err := requireParent(r.Context())
	if err != nil {
		respondError(w, r, "failed to list pending withdrawals", err)
		return
	}

	summary, err := h.entryUC.ListPending(r.Context(), caller.ID)
	if err != nil {
		respondError(w, r, "failed to list pending withdrawals", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PendingFromUseCase(summary))
}
