// Package lock serializes processing of a single receipt file across requests.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned when another holder owns the key.
var ErrLockHeld = errors.New("lock is held by another process")

// Release gives the lock back. It is safe to call more than once.
type Release func(ctx context.Context) error

// Locker acquires short-lived exclusive locks keyed by string.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}
