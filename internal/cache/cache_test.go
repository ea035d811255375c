package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client)
}

func TestRedis_GetSetJSON(t *testing.T) {
	mr, r := setupTestRedis(t)
	ctx := context.Background()

	var got sample
	ok, err := r.GetJSON(ctx, ProductListKey, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.SetJSON(ctx, ProductListKey, sample{Name: "Pomfret", Price: "250"}, time.Minute))
	ok, err = r.GetJSON(ctx, ProductListKey, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Pomfret", got.Name)

	mr.FastForward(2 * time.Minute)
	ok, err = r.GetJSON(ctx, ProductListKey, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_CorruptEntryIsAMiss(t *testing.T) {
	mr, r := setupTestRedis(t)
	require.NoError(t, mr.Set(ProductListKey, "{not json"))

	var got sample
	ok, err := r.GetJSON(context.Background(), ProductListKey, &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(ProductListKey))
}

func TestRedis_Hit(t *testing.T) {
	mr, r := setupTestRedis(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := r.Hit(ctx, "rate:login:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	mr.FastForward(61 * time.Second)
	n, err := r.Hit(ctx, "rate:login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.SetJSON(ctx, "k", sample{Name: "Crab"}, time.Minute))
	var got sample
	ok, _ := m.GetJSON(ctx, "k", &got)
	assert.True(t, ok)
	assert.Equal(t, "Crab", got.Name)

	now = now.Add(time.Minute)
	ok, _ = m.GetJSON(ctx, "k", &got)
	assert.False(t, ok)

	require.NoError(t, m.SetJSON(ctx, "k", sample{Name: "Crab"}, 0))
	require.NoError(t, m.Delete(ctx, "k"))
	ok, _ = m.GetJSON(ctx, "k", &got)
	assert.False(t, ok)
}
