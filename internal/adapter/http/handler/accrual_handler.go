package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/growbucks/internal/adapter/http/dto"
	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

// AccrualService defines the batch accrual operations exposed to the scheduler.
type AccrualService interface {
	RunDailyAccrual(ctx context.Context, now time.Time) (*usecase.BatchResult, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.InterestRun, error)
}

// AccrualHandler lets an external scheduler trigger and inspect batch accrual.
type AccrualHandler struct {
	accrualUC AccrualService
	now       func() time.Time
}

// NewAccrualHandler creates a new AccrualHandler.
func NewAccrualHandler(accrualUC AccrualService) *AccrualHandler {
	return &AccrualHandler{accrualUC: accrualUC, now: time.Now}
}

// Run accrues every eligible account up to now. Re-running on the same day is a no-op.
func (h *AccrualHandler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.accrualUC.RunDailyAccrual(r.Context(), h.now())
	if err != nil {
		respondError(w, r, "accrual run failed", err)
		return
	}

	if len(result.Errors) > 0 {
		zerolog.Ctx(r.Context()).Warn().
			Str("run_id", result.RunID).
			Int("failed", len(result.Errors)).
			Msg("accrual run finished with account failures")
	}

	writeJSON(w, http.StatusOK, dto.AccrualRunFromUseCase(result))
}

// Runs lists the most recent batch runs.
func (h *AccrualHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	runs, err := h.accrualUC.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, "failed to list accrual runs", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InterestRunsFromDomain(runs))
}
