package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreIncrement(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	count, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMemoryStoreConcurrentIncrement(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const n = 100
	counts := make(chan int64, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := store.Increment(ctx, "k", time.Minute)
			assert.NoError(t, err)
			counts <- count
		}()
	}
	wg.Wait()
	close(counts)

	// Every caller must observe a distinct count in 1..n: no lost updates.
	seen := make(map[int64]bool, n)
	for c := range counts {
		assert.False(t, seen[c], "count %d observed twice", c)
		assert.GreaterOrEqual(t, c, int64(1))
		assert.LessOrEqual(t, c, int64(n))
		seen[c] = true
	}
	assert.Len(t, seen, n)
}

func TestMemoryStoreWindowSetOnlyOnCreation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	store.now = func() time.Time { return base }

	_, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)

	// A later increment must not push the deadline out.
	store.now = func() time.Time { return base.Add(30 * time.Second) }
	_, err = store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)

	ttl, err := store.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, ttl)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	store.now = func() time.Time { return base }

	count, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	store.now = func() time.Time { return base.Add(2 * time.Minute) }

	// Expired key counts from scratch with a fresh window.
	count, err = store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStoreTTLMissingKey(t *testing.T) {
	store := NewMemoryStore()

	ttl, err := store.TTL(context.Background(), "missing")
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Duration(0))
}

func TestMemoryStoreReset(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Reset(ctx, "k"))

	count, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
