package lock

import (
	"context"
	"sync"
	"time"
)

// Local is an in-process Locker for single instance deployments.
type Local struct {
	mu     sync.Mutex
	held   map[string]localEntry
	now    func() time.Time
	nextID uint64
}

type localEntry struct {
	id      uint64
	expires time.Time
}

func NewLocal() *Local {
	return &Local{held: make(map[string]localEntry), now: time.Now}
}

func (l *Local) Acquire(_ context.Context, key string, ttl time.Duration) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return nil, ErrLockHeld
	}
	l.nextID++
	id := l.nextID
	l.held[key] = localEntry{id: id, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.held[key]; ok && e.id == id {
			delete(l.held, key)
		}
		return nil
	}, nil
}
