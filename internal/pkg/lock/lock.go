// Package lock provides per-user mutual exclusion.
// Review decisions and game moves for one user are serialized through it
// while different users proceed in parallel.
package lock

import (
	"context"
	"sync"
	"time"
)

// entry is a mutex shared by all holders and waiters for one user.
type entry struct {
	mu   sync.Mutex
	refs int
}

// UserLock hands out one mutex per user id. Entries are dropped once no
// goroutine holds or waits on them, so the map does not grow with the
// number of users ever seen.
type UserLock struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{entries: make(map[int64]*entry)}
}

func (ul *UserLock) acquire(userID int64) *entry {
	ul.mu.Lock()
	e, ok := ul.entries[userID]
	if !ok {
		e = &entry{}
		ul.entries[userID] = e
	}
	e.refs++
	ul.mu.Unlock()
	return e
}

func (ul *UserLock) release(userID int64, e *entry) {
	ul.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(ul.entries, userID)
	}
	ul.mu.Unlock()
}

// Lock acquires the lock for a user.
func (ul *UserLock) Lock(userID int64) {
	ul.acquire(userID).mu.Lock()
}

// Unlock releases the lock for a user. Unlocking a user that is not
// locked is a no-op.
func (ul *UserLock) Unlock(userID int64) {
	ul.mu.Lock()
	e, ok := ul.entries[userID]
	ul.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Unlock()
	ul.release(userID, e)
}

// TryLock attempts to acquire the lock without blocking.
func (ul *UserLock) TryLock(userID int64) bool {
	e := ul.acquire(userID)
	if e.mu.TryLock() {
		return true
	}
	ul.release(userID, e)
	return false
}

// WithLock executes fn while holding the user's lock.
func (ul *UserLock) WithLock(userID int64, fn func() error) error {
	ul.Lock(userID)
	defer ul.Unlock(userID)
	return fn()
}

// WithLockContext is WithLock bounded by ctx and timeout. It returns
// ErrLockTimeout if the lock could not be taken in time.
func (ul *UserLock) WithLockContext(ctx context.Context, userID int64, timeout time.Duration, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for !ul.TryLock(userID) {
		select {
		case <-ctx.Done():
			return ErrLockTimeout
		case <-ticker.C:
		}
	}
	defer ul.Unlock(userID)
	return fn()
}

// size returns the number of live entries.
func (ul *UserLock) size() int {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	return len(ul.entries)
}
