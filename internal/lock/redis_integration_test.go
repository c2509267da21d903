//go:build integration

package lock

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/linkshelf/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(ctx context.Context, t *testing.T, ttl time.Duration) *RedisLocker {
	rc := testutil.NewRedisContainer(ctx, t)
	t.Cleanup(func() { rc.Terminate(context.Background()) })

	l, err := NewRedisLocker(ctx, RedisConfig{Addr: rc.Addr(), TTL: ttl}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(ctx, t, time.Minute)
	url := "https://example.com/a"

	unlock, ok, err := l.TryLock(ctx, url)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, url)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.TryLock(ctx, "https://example.com/b")
	require.NoError(t, err)
	assert.True(t, ok)

	unlock()

	_, ok, err = l.TryLock(ctx, url)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(ctx, t, 200*time.Millisecond)
	url := "https://example.com/a"

	staleUnlock, ok, err := l.TryLock(ctx, url)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(400 * time.Millisecond)

	_, ok, err = l.TryLock(ctx, url)
	require.NoError(t, err)
	require.True(t, ok)

	// The stale holder must not release the new holder's lock.
	staleUnlock()

	_, ok, err = l.TryLock(ctx, url)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisLocker_Unreachable(t *testing.T) {
	_, err := NewRedisLocker(context.Background(), RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	assert.Error(t, err)
}
