package locking

import (
	"context"
	"sync"
	"time"
)

// LocalPlanLocker implements PlanLocker with in-process mutexes. It is the
// default for single-instance deployments without Redis.
type LocalPlanLocker struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

// NewLocalPlanLocker creates an in-process plan locker.
func NewLocalPlanLocker() *LocalPlanLocker {
	return &LocalPlanLocker{locks: make(map[string]struct{})}
}

// Acquire takes the lock for key, or returns ErrLockHeld if another request
// holds it. TTL is ignored; in-process locks cannot outlive their holder.
func (l *LocalPlanLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.locks[key]; held {
		return nil, ErrLockHeld
	}
	l.locks[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.locks, key)
			l.mu.Unlock()
		})
	}
	return release, nil
}
