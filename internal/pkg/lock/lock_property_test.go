package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestSingleDecisionWinsProperty models concurrent review decisions for one
// sender: each decider takes the lock, checks whether the entry is still
// pending and clears it. Exactly one decider may observe the entry.
func TestSingleDecisionWinsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		deciders := rapid.IntRange(2, 20).Draw(t, "deciders")
		senderID := rapid.Int64Range(1, 1_000_000).Draw(t, "senderID")

		ul := NewUserLock()
		pending := true
		var winners atomic.Int32

		var wg sync.WaitGroup
		wg.Add(deciders)
		for i := 0; i < deciders; i++ {
			go func() {
				defer wg.Done()
				_ = ul.WithLock(senderID, func() error {
					if pending {
						pending = false
						winners.Add(1)
					}
					return nil
				})
			}()
		}
		wg.Wait()

		if winners.Load() != 1 {
			t.Fatalf("expected exactly one winning decision, got %d", winners.Load())
		}
		if ul.size() != 0 {
			t.Fatalf("lock entries leaked: %d", ul.size())
		}
	})
}

// TestIndependentUsersProperty checks that holding one user's lock never
// blocks another user.
func TestIndependentUsersProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64Range(1, 1000).Draw(t, "a")
		b := rapid.Int64Range(1001, 2000).Draw(t, "b")

		ul := NewUserLock()
		ul.Lock(a)
		if !ul.TryLock(b) {
			t.Fatalf("user %d blocked by user %d", b, a)
		}
		ul.Unlock(b)
		ul.Unlock(a)
	})
}

func TestTryLock(t *testing.T) {
	ul := NewUserLock()

	require.True(t, ul.TryLock(1))
	assert.False(t, ul.TryLock(1))
	assert.Equal(t, 1, ul.size())

	ul.Unlock(1)
	assert.True(t, ul.TryLock(1))
	ul.Unlock(1)
	assert.Equal(t, 0, ul.size())
}

func TestUnlockWithoutLock(t *testing.T) {
	ul := NewUserLock()
	assert.NotPanics(t, func() { ul.Unlock(42) })
}

func TestWithLockContext_Timeout(t *testing.T) {
	ul := NewUserLock()
	ul.Lock(7)
	defer ul.Unlock(7)

	called := false
	err := ul.WithLockContext(context.Background(), 7, 20*time.Millisecond, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.False(t, called)
}

func TestWithLockContext_Acquires(t *testing.T) {
	ul := NewUserLock()
	ul.Lock(7)
	go func() {
		time.Sleep(10 * time.Millisecond)
		ul.Unlock(7)
	}()

	err := ul.WithLockContext(context.Background(), 7, time.Second, func() error { return nil })
	assert.NoError(t, err)
}
