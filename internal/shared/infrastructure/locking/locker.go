// Package locking serializes plan generation and mutation per user and day.
package locking

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned when another request holds the lock for the same
// user and plan date.
var ErrLockHeld = errors.New("plan lock already held")

// PlanLocker guards the read-modify-write cycle of a single user's plan for
// a single date. Concurrent requests for the same (user, date) must not
// interleave; requests for different keys proceed independently.
type PlanLocker interface {
	// Acquire takes the lock for the given key, or returns ErrLockHeld.
	// The returned release function must be called when the critical
	// section ends.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// PlanKey builds the lock key for a user and plan date.
func PlanKey(userID string, planDate time.Time) string {
	return "daybreak:plan-lock:" + userID + ":" + planDate.Format("2006-01-02")
}
