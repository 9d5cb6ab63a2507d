package domain

import "time"

// Event types
const (
	EventTypeDepositCompleted    = "deposit.completed"
	EventTypeWithdrawalRequested = "withdrawal.requested"
	EventTypeWithdrawalCompleted = "withdrawal.completed"
	EventTypeWithdrawalRejected  = "withdrawal.rejected"
	EventTypeInterestPosted      = "interest.posted"
	EventTypeAccountCreated      = "account.created"
	EventTypeAccountDeleted      = "account.deleted"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
	AggregateTypeEntry   = "entry"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewEntryEvent builds the outbox event for a ledger entry state change.
func NewEntryEvent(id, eventType string, entry *LedgerEntry, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   entry.ID,
		AggregateType: AggregateTypeEntry,
		EventType:     eventType,
		Payload: map[string]any{
			"entry_id":      entry.ID,
			"account_id":    entry.AccountID,
			"kind":          string(entry.Kind),
			"status":        string(entry.Status),
			"amount":        entry.Amount,
			"balance_after": entry.BalanceAfter,
			"occurred_at":   entry.OccurredAt.UTC().Format(time.RFC3339),
		},
		CreatedAt: at,
	}
}

// NewInterestPostedEvent builds the outbox event for one applied accrual plan.
func NewInterestPostedEvent(id string, plan AccrualPlan, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   plan.AccountID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeInterestPosted,
		Payload: map[string]any{
			"account_id":      plan.AccountID,
			"days":            plan.Days,
			"postings":        len(plan.Postings),
			"total_interest":  plan.TotalInterest(),
			"balance_after":   plan.FinalBalance,
			"last_accrual_at": plan.NewLastAccrualAt.UTC().Format(time.RFC3339),
		},
		CreatedAt: at,
	}
}

// NewAccountEvent builds an account lifecycle event.
func NewAccountEvent(id, eventType string, account *Account, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   account.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     eventType,
		Payload: map[string]any{
			"account_id": account.ID,
			"parent_id":  account.ParentID,
			"name":       account.Name,
			"balance":    account.Balance,
			"daily_rate": account.DailyRate.String(),
		},
		CreatedAt: at,
	}
}
