package syncx

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondBroadcastWakesAllWaiters(t *testing.T) {
	var mu sync.RWMutex
	cond := NewCond()

	const waiters = 8
	ready := false

	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := NewGuard(&mu, Exclusive)
			for !ready {
				cond.Wait(g)
			}
			g.Release()
		}()
	}

	// let at least some waiters park before the broadcast
	time.Sleep(20 * time.Millisecond)

	Locked(&mu, Exclusive, func() { ready = true })
	cond.Broadcast()

	wg.Wait()
}

func TestCondWaitReacquiresGuard(t *testing.T) {
	var mu sync.RWMutex
	cond := NewCond()

	done := false
	go func() {
		time.Sleep(10 * time.Millisecond)
		Locked(&mu, Exclusive, func() { done = true })
		cond.Broadcast()
	}()

	g := NewGuard(&mu, Exclusive)
	for !done {
		cond.Wait(g)
	}
	assert.True(t, g.OwnsLock())
	g.Release()
}

func TestCondWaitTimeoutElapses(t *testing.T) {
	var mu sync.RWMutex
	cond := NewCond()

	g := NewGuard(&mu, Exclusive)
	start := time.Now()
	woken := cond.WaitTimeout(g, 30*time.Millisecond)

	assert.False(t, woken)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.True(t, g.OwnsLock(), "guard must be owned again after timeout")
	g.Release()
}

func TestCondWaitTimeoutWokenBeforeDeadline(t *testing.T) {
	var mu sync.RWMutex
	cond := NewCond()

	done := false
	go func() {
		time.Sleep(20 * time.Millisecond)
		Locked(&mu, Exclusive, func() { done = true })
		cond.Broadcast()
	}()

	g := NewGuard(&mu, Exclusive)
	for !done {
		if !cond.WaitTimeout(g, 5*time.Second) {
			break
		}
	}
	require.True(t, done, "waiter should have been woken, not timed out")
	g.Release()
}

func TestCondWaitContextCanceled(t *testing.T) {
	var mu sync.RWMutex
	cond := NewCond()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	g := NewGuard(&mu, Exclusive)
	err := cond.WaitContext(ctx, g)

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, g.OwnsLock())
	g.Release()
}

func TestCondSharedModeWait(t *testing.T) {
	var mu sync.RWMutex
	cond := NewCond()

	version := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		Locked(&mu, Exclusive, func() { version++ })
		cond.Broadcast()
	}()

	g := NewGuard(&mu, Shared)
	for version == 0 {
		cond.Wait(g)
	}
	assert.Equal(t, 1, version)
	g.Release()
}

// TestCondNoLostWakeup hammers the park/signal edge: a broadcast issued
// between a waiter's predicate check and its suspension must still wake
// it, because the wait channel is fetched before the guard is dropped.
func TestCondNoLostWakeup(t *testing.T) {
	var mu sync.RWMutex
	cond := NewCond()

	const rounds = 1000
	turn := 0

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			g := NewGuard(&mu, Exclusive)
			for turn%2 != 0 {
				cond.Wait(g)
			}
			turn++
			g.Release()
			cond.Broadcast()
		}
	}()

	for i := 0; i < rounds; i++ {
		g := NewGuard(&mu, Exclusive)
		for turn%2 != 1 {
			cond.Wait(g)
		}
		turn++
		g.Release()
		cond.Broadcast()
	}
	wg.Wait()

	assert.Equal(t, 2*rounds, turn)
}
