package syncx

import "sync"

// Mode selects how a lock is acquired.
type Mode int

const (
	// Exclusive permits at most one holder and excludes all others.
	Exclusive Mode = iota
	// Shared permits many concurrent holders but excludes any
	// exclusive holder.
	Shared
)

// Locked runs fn while holding mu in the given mode. The lock is
// released on every exit path, including a panic inside fn.
//
// Use Locked for critical sections that fit in one scope; use [Guard]
// when the lock must be dropped and reacquired (condition waits) or
// held past the current scope.
func Locked(mu *sync.RWMutex, mode Mode, fn func()) {
	if mode == Exclusive {
		mu.Lock()
		defer mu.Unlock()
	} else {
		mu.RLock()
		defer mu.RUnlock()
	}
	fn()
}

// Guard is an explicit lock guard over a [sync.RWMutex]. NewGuard
// acquires the lock; the guard then tracks ownership so the lock can be
// dropped and reacquired across a wait, or handed to another holder
// (a watch borrow keeps its guard until released).
//
// Calling Lock while already owning the lock, or Unlock while not,
// is a contract violation and panics.
//
// A Guard is not safe for concurrent use.
type Guard struct {
	mu   *sync.RWMutex
	mode Mode
	owns bool
}

// NewGuard acquires mu in the given mode and returns the owning guard.
func NewGuard(mu *sync.RWMutex, mode Mode) *Guard {
	g := &Guard{mu: mu, mode: mode}
	g.acquire()
	return g
}

// Lock reacquires the guarded lock. Panics if the guard already owns it.
func (g *Guard) Lock() {
	if g.owns {
		panic("syncx: Guard.Lock called while already owning the lock")
	}
	g.acquire()
}

// Unlock releases the guarded lock. Panics if the guard does not own it.
func (g *Guard) Unlock() {
	if !g.owns {
		panic("syncx: Guard.Unlock called without owning the lock")
	}
	g.release()
}

// OwnsLock reports whether the guard currently holds the lock.
func (g *Guard) OwnsLock() bool {
	return g.owns
}

// Release unlocks if the guard still owns the lock, and is a no-op
// otherwise. Safe to defer alongside early Unlock calls.
func (g *Guard) Release() {
	if g.owns {
		g.release()
	}
}

func (g *Guard) acquire() {
	if g.mode == Exclusive {
		g.mu.Lock()
	} else {
		g.mu.RLock()
	}
	g.owns = true
}

func (g *Guard) release() {
	g.owns = false
	if g.mode == Exclusive {
		g.mu.Unlock()
	} else {
		g.mu.RUnlock()
	}
}
