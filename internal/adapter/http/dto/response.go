package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	ParentID       string          `json:"parent_id"`
	Name           string          `json:"name"`
	BalanceCents   int64           `json:"balance_cents"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
	InterestPaused bool            `json:"interest_paused"`
	LastAccrualAt  time.Time       `json:"last_accrual_at"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		ParentID:       a.ParentID,
		Name:           a.Name,
		BalanceCents:   a.Balance,
		DailyRate:      a.DailyRate,
		InterestPaused: a.InterestPaused,
		LastAccrualAt:  a.LastAccrualAt,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int                `json:"total"`
}

// LiveBalanceResponse is the interpolated display balance.
type LiveBalanceResponse struct {
	AccountID      string          `json:"account_id"`
	BalanceCents   int64           `json:"balance_cents"`
	LiveCents      float64         `json:"live_cents"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
	InterestPaused bool            `json:"interest_paused"`
	LastAccrualAt  time.Time       `json:"last_accrual_at"`
	AsOf           time.Time       `json:"as_of"`
}

// LiveBalanceFromUseCase converts a live balance to response.
func LiveBalanceFromUseCase(b *usecase.LiveBalance) *LiveBalanceResponse {
	return &LiveBalanceResponse{
		AccountID:      b.AccountID,
		BalanceCents:   b.Balance,
		LiveCents:      b.Live,
		DailyRate:      b.DailyRate,
		InterestPaused: b.InterestPaused,
		LastAccrualAt:  b.LastAccrualAt,
		AsOf:           b.AsOf,
	}
}

// ProjectionResponse is a compounded balance projection.
type ProjectionResponse struct {
	AccountID      string `json:"account_id"`
	Days           int    `json:"days"`
	BalanceCents   int64  `json:"balance_cents"`
	ProjectedCents int64  `json:"projected_cents"`
	InterestCents  int64  `json:"interest_cents"`
}

// ProjectionFromUseCase converts a projection to response.
func ProjectionFromUseCase(p *usecase.Projection) *ProjectionResponse {
	return &ProjectionResponse{
		AccountID:      p.AccountID,
		Days:           p.Days,
		BalanceCents:   p.Balance,
		ProjectedCents: p.Projected,
		InterestCents:  p.Interest,
	}
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID                string     `json:"id"`
	AccountID         string     `json:"account_id"`
	Kind              string     `json:"kind"`
	AmountCents       int64      `json:"amount_cents"`
	BalanceAfterCents int64      `json:"balance_after_cents"`
	Status            string     `json:"status"`
	Description       string     `json:"description,omitempty"`
	OccurredAt        time.Time  `json:"occurred_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	ProcessedBy       string     `json:"processed_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:                e.ID,
		AccountID:         e.AccountID,
		Kind:              string(e.Kind),
		AmountCents:       e.Amount,
		BalanceAfterCents: e.BalanceAfter,
		Status:            string(e.Status),
		Description:       e.Description,
		OccurredAt:        e.OccurredAt,
		ProcessedAt:       e.ProcessedAt,
		ProcessedBy:       e.ProcessedBy,
		CreatedAt:         e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse represents a page of entries.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Count   int              `json:"count"`
}

// PendingResponse lists pending withdrawals awaiting a parent.
type PendingResponse struct {
	Count       int              `json:"count"`
	TotalCents  int64            `json:"total_cents"`
	Withdrawals []*EntryResponse `json:"withdrawals"`
}

// PendingFromUseCase converts a pending summary to response.
func PendingFromUseCase(s *usecase.PendingSummary) *PendingResponse {
	return &PendingResponse{
		Count:       s.Count,
		TotalCents:  s.TotalCents,
		Withdrawals: EntriesFromDomain(s.Entries),
	}
}

// InterestSummaryResponse is the interest earned today and this month.
type InterestSummaryResponse struct {
	AccountID      string    `json:"account_id"`
	TodayCents     int64     `json:"today_cents"`
	ThisMonthCents int64     `json:"this_month_cents"`
	AsOf           time.Time `json:"as_of"`
}

// InterestSummaryFromUseCase converts an interest summary to response.
func InterestSummaryFromUseCase(s *usecase.InterestSummary) *InterestSummaryResponse {
	return &InterestSummaryResponse{
		AccountID:      s.AccountID,
		TodayCents:     s.Today,
		ThisMonthCents: s.ThisMonth,
		AsOf:           s.AsOf,
	}
}

// ReconciliationResponse is the reconciliation result of one account.
type ReconciliationResponse struct {
	AccountID         string    `json:"account_id"`
	RecordedBalance   int64     `json:"recorded_balance"`
	CalculatedBalance int64     `json:"calculated_balance"`
	LastBalanceAfter  int64     `json:"last_balance_after"`
	Difference        int64     `json:"difference"`
	IsReconciled      bool      `json:"is_reconciled"`
	LastChecked       time.Time `json:"last_checked"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		LastBalanceAfter:  r.LastBalanceAfter,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationReportResponse is the ledger-wide reconciliation report.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}

	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
}

// AccrualRunResponse summarizes a batch accrual run.
type AccrualRunResponse struct {
	RunID              string                `json:"run_id"`
	RunDate            time.Time             `json:"run_date"`
	Processed          int                   `json:"processed"`
	Skipped            int                   `json:"skipped"`
	Postings           int                   `json:"postings"`
	TotalInterestCents int64                 `json:"total_interest_cents"`
	Errors             []domain.AccountError `json:"errors"`
}

// AccrualRunFromUseCase converts a batch result to response.
func AccrualRunFromUseCase(r *usecase.BatchResult) *AccrualRunResponse {
	errs := make([]domain.AccountError, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = domain.AccountError{AccountID: e.AccountID, Error: e.Err.Error()}
	}

	return &AccrualRunResponse{
		RunID:              r.RunID,
		RunDate:            r.RunDate,
		Processed:          r.Processed,
		Skipped:            r.Skipped,
		Postings:           r.Postings,
		TotalInterestCents: r.TotalInterest,
		Errors:             errs,
	}
}

// InterestRunResponse is a persisted batch run summary.
type InterestRunResponse struct {
	ID                 string                `json:"id"`
	RunDate            time.Time             `json:"run_date"`
	Processed          int                   `json:"processed"`
	Skipped            int                   `json:"skipped"`
	Failed             int                   `json:"failed"`
	TotalInterestCents int64                 `json:"total_interest_cents"`
	Errors             []domain.AccountError `json:"errors"`
	StartedAt          time.Time             `json:"started_at"`
	FinishedAt         time.Time             `json:"finished_at"`
}

// InterestRunsFromDomain converts persisted runs to responses.
func InterestRunsFromDomain(runs []*domain.InterestRun) []*InterestRunResponse {
	result := make([]*InterestRunResponse, len(runs))
	for i, r := range runs {
		result[i] = &InterestRunResponse{
			ID:                 r.ID,
			RunDate:            r.RunDate,
			Processed:          r.Processed,
			Skipped:            r.Skipped,
			Failed:             r.Failed,
			TotalInterestCents: r.TotalInterest,
			Errors:             r.Errors,
			StartedAt:          r.StartedAt,
			FinishedAt:         r.FinishedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
