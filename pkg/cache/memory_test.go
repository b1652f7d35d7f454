package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	require.NoError(t, mc.Set(ctx, "s", "hello", 0))
	require.NoError(t, mc.Set(ctx, "j", item{Name: "WIF", Price: 2.5}, time.Minute))

	var s string
	require.NoError(t, mc.Get(ctx, "s", &s))
	assert.Equal(t, "hello", s)

	got, err := GetTyped[item](ctx, mc, "j")
	require.NoError(t, err)
	assert.Equal(t, item{Name: "WIF", Price: 2.5}, got)

	require.NoError(t, mc.Delete(ctx, "s", "j"))
	assert.ErrorIs(t, mc.Get(ctx, "s", &s), ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	mc := NewMemoryCache()
	mc.now = func() time.Time { return now }
	t.Cleanup(func() { _ = mc.Close() })

	require.NoError(t, mc.Set(ctx, "k", "v", time.Second))
	now = now.Add(2 * time.Second)

	var v string
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
	assert.Zero(t, mc.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	mc.now = func() time.Time { return now }
	t.Cleanup(func() { _ = mc.Close() })

	require.NoError(t, mc.Set(ctx, "a", "1", 0))
	now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", "2", 0))
	now = now.Add(time.Second)

	var v string
	require.NoError(t, mc.Get(ctx, "a", &v))
	now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", "3", 0))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "a", &v))
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "resolve:solana:abc", GenerateKey("resolve", "solana", "abc"))
}
