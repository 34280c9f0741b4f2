// internal/lock/lock.go
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrLockHeld is returned when the per-account lock could not be acquired.
var ErrLockHeld = errors.New("account lock already held")

// AccountLocker serializes recharge attempts per account, so a
// double-submitted request cannot race its twin through the balance check.
// Per-wallet correctness is guaranteed by the database row lock either way;
// this lock rejects the duplicate early instead of letting it queue.
type AccountLocker interface {
	// Acquire takes the lock for the account and returns a release function.
	Acquire(ctx context.Context, accountID int64) (release func(), err error)
}

// LocalLocker is an in-process AccountLocker, used when Redis is not
// configured (single-instance deployments and tests).
type LocalLocker struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

// NewLocalLocker creates an in-process account locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[int64]struct{})}
}

// Acquire takes the lock for the account, failing fast if it is held.
func (l *LocalLocker) Acquire(ctx context.Context, accountID int64) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[accountID]; ok {
		return nil, ErrLockHeld
	}
	l.held[accountID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, accountID)
			l.mu.Unlock()
		})
	}, nil
}
