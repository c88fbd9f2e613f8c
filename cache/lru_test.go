package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/cache"
)

func TestLRUProviderEvictsOldest(t *testing.T) {
	p := cache.NewLRUProvider(2)
	ctx := context.Background()

	require.NoError(t, p.Set(ctx, "a", cache.Entry{Payload: []byte("a"), CreatedAt: time.Now(), TTL: time.Minute}))
	require.NoError(t, p.Set(ctx, "b", cache.Entry{Payload: []byte("b"), CreatedAt: time.Now(), TTL: time.Minute}))
	require.NoError(t, p.Set(ctx, "c", cache.Entry{Payload: []byte("c"), CreatedAt: time.Now(), TTL: time.Minute}))

	_, found, err := p.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = p.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLRUProviderDeleteByTag(t *testing.T) {
	p := cache.NewLRUProvider(10)
	ctx := context.Background()

	require.NoError(t, p.Set(ctx, "a", cache.Entry{Payload: []byte("a"), TTL: time.Minute, Tags: []string{"region:north"}}))
	require.NoError(t, p.Set(ctx, "b", cache.Entry{Payload: []byte("b"), TTL: time.Minute, Tags: []string{"region:south"}}))

	require.NoError(t, p.DeleteByTag(ctx, "region:north"))

	_, found, _ := p.Get(ctx, "a")
	assert.False(t, found)
	_, found, _ = p.Get(ctx, "b")
	assert.True(t, found)
}

func TestLRUProviderClear(t *testing.T) {
	p := cache.NewLRUProvider(10)
	ctx := context.Background()
	require.NoError(t, p.Set(ctx, "a", cache.Entry{Payload: []byte("a"), TTL: time.Minute}))
	require.NoError(t, p.Clear(ctx))
	_, found, _ := p.Get(ctx, "a")
	assert.False(t, found)
}
