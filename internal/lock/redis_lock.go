// internal/lock/redis_lock.go
package lock

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-redis/redis/v8"
)

// unlockScript deletes the lock key only if it still holds our token, so an
// expired-and-reacquired lock is never released by the previous holder.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// RedisLocker is an AccountLocker backed by Redis SET NX, for deployments
// with more than one API instance.
type RedisLocker struct {
	client     *redis.Client
	expiration time.Duration
}

// NewRedisLocker creates a Redis-backed account locker. The expiration
// bounds how long a crashed holder can block an account.
func NewRedisLocker(client *redis.Client, expiration time.Duration) *RedisLocker {
	return &RedisLocker{client: client, expiration: expiration}
}

// Acquire takes the per-account lock with SET NX, failing fast when another
// recharge for the same account is in flight.
func (l *RedisLocker) Acquire(ctx context.Context, accountID int64) (func(), error) {
	key := fmt.Sprintf("recharge:lock:account:%d", accountID)
	token := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63())

	ok, err := l.client.SetNX(ctx, key, token, l.expiration).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire account lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func() {
		// Best-effort; the expiration cleans up after a lost connection.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = l.client.Eval(releaseCtx, unlockScript, []string{key}, token).Result()
	}, nil
}
