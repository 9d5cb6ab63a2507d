package domain

import "time"

// InterestPosting is one day's interest computed by Accrue, not yet persisted.
type InterestPosting struct {
	Amount       int64
	BalanceAfter int64
	OccurredAt   time.Time
}

// AccrualPlan is the result of Accrue. A plan with Days == 0 is a no-op: the caller
// must not advance the account's marker.
type AccrualPlan struct {
	AccountID        string
	OpeningBalance   int64
	FinalBalance     int64
	From             time.Time
	NewLastAccrualAt time.Time
	Days             int
	Postings         []InterestPosting
}

// IsEmpty reports whether the plan owes no days.
func (p AccrualPlan) IsEmpty() bool {
	return p.Days == 0
}

// TotalInterest is the sum of all postings.
func (p AccrualPlan) TotalInterest() int64 {
	return p.FinalBalance - p.OpeningBalance
}

// Accrue computes the interest owed to account for every whole day between its
// accrual marker and now, compounding day by day on the running balance. Days whose
// interest floors to zero produce no posting but still advance the marker. A balance
// that would leave the int64 cents range fails with ErrAmountOverflow and no plan.
func Accrue(account *Account, now time.Time, loc *time.Location) (AccrualPlan, error) {
	plan := AccrualPlan{
		AccountID:        account.ID,
		OpeningBalance:   account.Balance,
		FinalBalance:     account.Balance,
		From:             account.LastAccrualAt,
		NewLastAccrualAt: account.LastAccrualAt,
	}

	if !account.EligibleForAccrual() {
		return plan, nil
	}

	n := WholeDaysBetween(account.LastAccrualAt, now, loc)
	if n < 1 {
		return plan, nil
	}

	running := account.Balance
	postings := make([]InterestPosting, 0, n)

	for i := 1; i <= n; i++ {
		interest, err := DailyInterest(running, account.DailyRate)
		if err != nil {
			return AccrualPlan{}, err
		}
		if interest <= 0 {
			continue
		}

		running, err = AddCents(running, interest)
		if err != nil {
			return AccrualPlan{}, err
		}
		postings = append(postings, InterestPosting{
			Amount:       interest,
			BalanceAfter: running,
			OccurredAt:   AddDays(account.LastAccrualAt, i, loc),
		})
	}

	plan.Days = n
	plan.Postings = postings
	plan.FinalBalance = running
	plan.NewLastAccrualAt = AddDays(account.LastAccrualAt, n, loc)

	return plan, nil
}
