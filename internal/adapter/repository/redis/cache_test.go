package redis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/growbucks/internal/domain"
)

func TestAccountCacheRoundTrip(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewAccountCache(client)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	account := &domain.Account{
		ID:            "acc-1",
		ParentID:      "parent-1",
		Name:          "Emma",
		Balance:       10_000,
		DailyRate:     decimal.RequireFromString("0.0125"),
		LastAccrualAt: at,
		Version:       4,
		CreatedAt:     at,
		UpdatedAt:     at,
	}

	require.NoError(t, cache.SetAccount(ctx, account, time.Minute))

	got, err := cache.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, account.Balance, got.Balance)
	assert.True(t, account.DailyRate.Equal(got.DailyRate))
	assert.True(t, account.LastAccrualAt.Equal(got.LastAccrualAt))
	assert.Equal(t, int64(4), got.Version)
	assert.Nil(t, got.DeletedAt)
}

func TestAccountCacheMissAndInvalidate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewAccountCache(client)
	ctx := context.Background()

	got, err := cache.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.SetAccount(ctx, &domain.Account{ID: "acc-1", Balance: 5}, time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "acc-1"))

	got, err = cache.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccountCacheExpiresAndDropsGarbage(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewAccountCache(client)
	ctx := context.Background()

	require.NoError(t, cache.SetAccount(ctx, &domain.Account{ID: "acc-1"}, time.Second))
	mr.FastForward(2 * time.Second)

	got, err := cache.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, mr.Set(cache.prefix+"acc-2", "{not json"))

	got, err = cache.GetAccount(ctx, "acc-2")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(cache.prefix+"acc-2"))
}

func TestAccountCacheSurfacesConnectionErrors(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	cache := NewAccountCache(client)
	mr.Close()

	_, err := cache.GetAccount(context.Background(), "acc-1")
	assert.Error(t, err)
}
