package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheGetSetDel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryCache()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, BookingOverviewKey("b-1"), []byte(`{"id":"b-1"}`), time.Minute))
	v, ok, err := c.Get(ctx, BookingOverviewKey("b-1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"id":"b-1"}`, string(v))

	require.NoError(t, c.Del(ctx, BookingOverviewKey("b-1")))
	_, ok, _ = c.Get(ctx, BookingOverviewKey("b-1"))
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(59 * time.Second)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheSetNX(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryCache()
	key := IdempotencyKey("post", "/api/payments", "abc")

	ok, err := c.SetNX(ctx, key, []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, key, []byte("2"), time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, _ := c.Get(ctx, key)
	assert.Equal(t, "1", string(v))
}

func TestKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "booking:overview:b%2F1", BookingOverviewKey(" b/1 "))
	assert.Equal(t, "idempotency:POST:%2Fapi%2Fpayments:k1", IdempotencyKey("post", "/api/payments", "k1"))
	assert.Equal(t, "option:alert:fl-1:2026-11-02", OptionAlertKey(" fl-1 ", "2026-11-02"))
}
