package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/growbucks/internal/adapter/http/dto"
	"github.com/iho/growbucks/internal/usecase"
)

// ReconciliationService defines the checks exposed over HTTP.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler handles reconciliation requests.
type ReconciliationHandler struct {
	reconUC  ReconciliationService
	accounts AccountReader
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService, accounts AccountReader) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC, accounts: accounts}
}

// Account reconciles one of the calling parent's accounts.
func (h *ReconciliationHandler) Account(w http.ResponseWriter, r *http.Request) {
	_, account, err := authorizeAccount(r.Context(), h.accounts, chi.URLParam(r, "id"), true)
	if err != nil {
		respondError(w, r, "failed to reconcile account", err)
		return
	}

	result, err := h.reconUC.ReconcileAccount(r.Context(), account.ID)
	if err != nil {
		respondError(w, r, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// Report reconciles every account and the ledger as a whole.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		respondError(w, r, "failed to generate reconciliation report", err)
		return
	}

	status := http.StatusOK
	if !report.LedgerConsistent || len(report.Discrepancies) > 0 {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ReconciliationReportFromUseCase(report))
}
