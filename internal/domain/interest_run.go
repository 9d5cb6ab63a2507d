package domain

import "time"

// AccountError is one account's failure within a batch accrual run.
type AccountError struct {
	AccountID string `json:"account_id"`
	Error     string `json:"error"`
}

// InterestRun is the persisted summary of one batch accrual run.
type InterestRun struct {
	ID            string
	RunDate       time.Time
	Processed     int
	Skipped       int
	Failed        int
	TotalInterest int64
	Errors        []AccountError
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration of the run.
func (r *InterestRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
