package locking

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it is still owned by the caller.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0
`

// RedisPlanLocker implements PlanLocker on Redis using SET NX PX, so locks
// are honored across multiple Daybreak instances.
type RedisPlanLocker struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisPlanLocker creates a Redis-backed plan locker.
func NewRedisPlanLocker(client *redis.Client, logger *slog.Logger) *RedisPlanLocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPlanLocker{client: client, logger: logger}
}

// Acquire takes the lock with the given TTL. The TTL bounds how long a
// crashed holder can block other instances.
func (l *RedisPlanLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func() {
		// Release runs on a fresh context so a canceled request still
		// frees the lock.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.client.Eval(rctx, releaseScript, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release plan lock",
				"key", key,
				"error", err,
			)
		}
	}
	return release, nil
}
