package syncx

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPanicContains(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		assert.Contains(t, fmt.Sprint(r), substr)
	}()
	fn()
}

func TestGuardAcquiresOnCreation(t *testing.T) {
	var mu sync.RWMutex

	g := NewGuard(&mu, Exclusive)
	assert.True(t, g.OwnsLock())
	assert.False(t, mu.TryLock(), "lock should be held by the guard")

	g.Release()
	assert.False(t, g.OwnsLock())
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

func TestGuardSharedAllowsConcurrentHolders(t *testing.T) {
	var mu sync.RWMutex

	g1 := NewGuard(&mu, Shared)
	g2 := NewGuard(&mu, Shared)
	assert.True(t, g1.OwnsLock())
	assert.True(t, g2.OwnsLock())
	assert.False(t, mu.TryLock(), "exclusive acquisition must be excluded")

	g1.Release()
	g2.Release()
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

func TestGuardUnlockThenLock(t *testing.T) {
	var mu sync.RWMutex

	g := NewGuard(&mu, Exclusive)
	g.Unlock()
	assert.False(t, g.OwnsLock())

	g.Lock()
	assert.True(t, g.OwnsLock())
	g.Release()
}

func TestGuardLockWhileOwningPanics(t *testing.T) {
	var mu sync.RWMutex

	g := NewGuard(&mu, Exclusive)
	defer g.Release()

	mustPanicContains(t, "already owning", func() { g.Lock() })
}

func TestGuardUnlockWithoutOwningPanics(t *testing.T) {
	var mu sync.RWMutex

	g := NewGuard(&mu, Exclusive)
	g.Unlock()

	mustPanicContains(t, "without owning", func() { g.Unlock() })
}

func TestGuardReleaseIdempotent(t *testing.T) {
	var mu sync.RWMutex

	g := NewGuard(&mu, Shared)
	g.Release()
	g.Release() // no-op, must not panic or unbalance the lock

	assert.True(t, mu.TryLock())
	mu.Unlock()
}

func TestLockedRunsUnderLock(t *testing.T) {
	var mu sync.RWMutex

	ran := false
	Locked(&mu, Exclusive, func() {
		ran = true
		assert.False(t, mu.TryLock())
	})
	require.True(t, ran)
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

func TestLockedReleasesOnPanic(t *testing.T) {
	var mu sync.RWMutex

	mustPanicContains(t, "boom", func() {
		Locked(&mu, Exclusive, func() { panic("boom") })
	})

	assert.True(t, mu.TryLock(), "lock must be released after panic in fn")
	mu.Unlock()
}

func TestLockedSharedMode(t *testing.T) {
	var mu sync.RWMutex

	Locked(&mu, Shared, func() {
		assert.True(t, mu.TryRLock(), "shared holders may overlap")
		mu.RUnlock()
		assert.False(t, mu.TryLock())
	})
}
