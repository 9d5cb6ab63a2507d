package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/growbucks/internal/domain"
)

// AccountCache implements usecase.AccountCache with JSON snapshots in Redis.
type AccountCache struct {
	client *redis.Client
	prefix string
}

// NewAccountCache creates a new AccountCache.
func NewAccountCache(client *redis.Client) *AccountCache {
	return &AccountCache{
		client: client,
		prefix: "account:snapshot:",
	}
}

type accountSnapshot struct {
	ID             string          `json:"id"`
	ParentID       string          `json:"parent_id"`
	Name           string          `json:"name"`
	Balance        int64           `json:"balance"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
	InterestPaused bool            `json:"interest_paused"`
	LastAccrualAt  time.Time       `json:"last_accrual_at"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
}

// GetAccount returns the cached snapshot, or nil on a miss.
func (c *AccountCache) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	raw, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var s accountSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		// Unreadable entries are dropped and treated as a miss.
		_ = c.client.Del(ctx, c.prefix+id).Err()
		return nil, nil
	}

	return &domain.Account{
		ID:             s.ID,
		ParentID:       s.ParentID,
		Name:           s.Name,
		Balance:        s.Balance,
		DailyRate:      s.DailyRate,
		InterestPaused: s.InterestPaused,
		LastAccrualAt:  s.LastAccrualAt,
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		DeletedAt:      s.DeletedAt,
	}, nil
}

// SetAccount stores a snapshot with TTL.
func (c *AccountCache) SetAccount(ctx context.Context, account *domain.Account, ttl time.Duration) error {
	raw, err := json.Marshal(accountSnapshot{
		ID:             account.ID,
		ParentID:       account.ParentID,
		Name:           account.Name,
		Balance:        account.Balance,
		DailyRate:      account.DailyRate,
		InterestPaused: account.InterestPaused,
		LastAccrualAt:  account.LastAccrualAt,
		Version:        account.Version,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
		DeletedAt:      account.DeletedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal account snapshot: %w", err)
	}

	return c.client.Set(ctx, c.prefix+account.ID, raw, ttl).Err()
}

// Invalidate removes the snapshot of an account.
func (c *AccountCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.prefix+id).Err()
}
