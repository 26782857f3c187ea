package jwt

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRevocation(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "session-token")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "session-token", time.Hour))

	revoked, err = store.IsRevoked(ctx, "session-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	// other tokens are unaffected
	revoked, err = store.IsRevoked(ctx, "another-token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryStoreEntryExpires(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "session-token", 20*time.Millisecond))

	assert.Eventually(t, func() bool {
		revoked, err := store.IsRevoked(ctx, "session-token")
		return err == nil && !revoked
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStoreSweepDropsExpiredEntries(t *testing.T) {
	store := NewMemoryStore(WithCleanupInterval(20 * time.Millisecond))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "stale-token", 10*time.Millisecond))
	require.NoError(t, store.Revoke(ctx, "live-token", time.Hour))

	assert.Eventually(t, func() bool {
		return store.Size() == 1
	}, time.Second, 10*time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "live-token")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			token := fmt.Sprintf("session-%d", n)
			_ = store.Revoke(ctx, token, time.Hour)
			_, _ = store.IsRevoked(ctx, token)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.Size())
}
