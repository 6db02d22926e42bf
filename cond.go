package syncx

import (
	"context"
	"sync"
	"time"
)

// Cond is a condition variable for use with [Guard]. Each wait
// atomically releases the caller's guard, suspends until the next
// [Cond.Broadcast], and reacquires the guard before returning.
//
// Wakeup is broadcast-only: Broadcast wakes every current waiter, and a
// waiter may also wake spuriously relative to its own predicate. Every
// wait must therefore sit in a loop of the form
//
//	for !predicate() {
//		cond.Wait(g)
//	}
//
// A zero Cond is not ready for use; create one with [NewCond].
type Cond struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewCond returns a new condition variable.
func NewCond() *Cond {
	return &Cond{}
}

// waitChan returns the channel the next Broadcast will close. It must be
// called before the caller's guard is released, so a broadcast landing
// between the predicate check and the suspension still wakes the waiter.
func (c *Cond) waitChan() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch == nil {
		c.ch = make(chan struct{})
	}
	return c.ch
}

// Broadcast wakes every goroutine currently waiting on c. It is legal
// (and typical) to call Broadcast after releasing the lock the waiters'
// predicates are checked under.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		close(c.ch)
		c.ch = nil
	}
}

// Wait releases g, suspends the calling goroutine until the next
// Broadcast, and reacquires g before returning.
func (c *Cond) Wait(g *Guard) {
	w := c.waitChan()
	g.Unlock()
	<-w
	g.Lock()
}

// WaitTimeout is [Cond.Wait] with a bounded suspension. It reports
// whether the waiter was woken by a Broadcast; false means d elapsed
// first. The guard is owned again on return either way, and the caller
// must re-check its predicate in both cases.
func (c *Cond) WaitTimeout(g *Guard, d time.Duration) bool {
	w := c.waitChan()
	g.Unlock()
	defer g.Lock()

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-w:
		return true
	case <-t.C:
		return false
	}
}

// WaitContext is [Cond.Wait] that also unblocks when ctx is done,
// returning ctx's error. The guard is owned again on return either way.
func (c *Cond) WaitContext(ctx context.Context, g *Guard) error {
	w := c.waitChan()
	g.Unlock()
	defer g.Lock()

	select {
	case <-w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
