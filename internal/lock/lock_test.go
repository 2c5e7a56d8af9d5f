package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	l, err := NewRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, mr
}

func TestRedis_AcquireRelease(t *testing.T) {
	l, mr := newMiniRedis(t)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "file-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+"file-1"))

	_, err = l.Acquire(ctx, "file-1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := l.Acquire(ctx, "file-2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists(keyPrefix+"file-1"))

	_, err = l.Acquire(ctx, "file-1", time.Minute)
	assert.NoError(t, err)
}

func TestRedis_Expiry(t *testing.T) {
	l, mr := newMiniRedis(t)
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "file-1", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = l.Acquire(ctx, "file-1", time.Minute)
	require.NoError(t, err)

	// The expired holder must not remove the new holder's lock.
	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists(keyPrefix+"file-1"))
}

func TestRedis_BadURL(t *testing.T) {
	_, err := NewRedis("://nope")
	assert.Error(t, err)
}

func TestRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	l, err := NewRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	mr.Close()

	_, err = l.Acquire(context.Background(), "file-1", time.Minute)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockHeld)
}

func TestLocal(t *testing.T) {
	l := NewLocal()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	release, err := l.Acquire(ctx, "file-1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "file-1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, release(ctx))
	relock, err := l.Acquire(ctx, "file-1", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = l.Acquire(ctx, "file-1", time.Minute)
	require.NoError(t, err)

	// Releasing an expired lock leaves the new holder alone.
	require.NoError(t, relock(ctx))
	_, err = l.Acquire(ctx, "file-1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
}
