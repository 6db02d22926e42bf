// Package watch implements a single-slot, latest-value broadcast
// channel: one sender, any number of cloned receivers, and a shared
// slot that always holds the most recently broadcast value.
//
// A channel is created with [New], which stores an initial value and
// returns a [Sender] and [Receiver] pair. [Sender.Broadcast] overwrites
// the slot and advances a version counter; receivers blocked in
// [Receiver.Recv] wake and take the new value. A slow receiver skips
// intermediate broadcasts: there is no history, only the latest value.
//
// Each receiver tracks the version of the last value it observed.
// [Receiver.Clone] starts the new handle at the cloning receiver's
// version, so a clone does not re-observe a value its parent already
// saw. [Receiver.Borrow] grants a read-locked view of the current value
// without consuming a version.
//
// The sender does not keep the channel alive: once every receiver
// handle has been closed, the channel is dead, [Sender.Closed] reports
// true, and [Sender.Broadcast] fails. Closing the sender marks the
// channel closed and unblocks every waiting receiver; a receiver that
// has not yet seen the final value still observes it once before
// closure is reported.
package watch

import (
	"errors"
	"sync"

	"github.com/baxromumarov/syncx"
)

// ErrClosed is returned by [Receiver.Recv] once the channel is closed
// and no unseen value remains, and by [Sender.Broadcast] once every
// receiver handle has been closed.
var ErrClosed = errors.New("watch: channel closed")

// The version counter's low bit is the closed flag; the remaining bits
// form a strictly increasing sequence advanced by versionStep on every
// broadcast, so the flag can be OR'd in without colliding.
const (
	closedBit   uint64 = 1
	versionStep uint64 = 2
)

type shared[T any] struct {
	mu   sync.RWMutex
	cond *syncx.Cond // notified on broadcast and on sender close

	value   T
	version uint64

	recvs      int         // live receiver handles
	closedCond *syncx.Cond // notified when recvs reaches zero
}

// New creates a watch channel holding the initial value and returns its
// handle pair. The initial value is published at version zero, and the
// returned receiver starts at version zero: its first Recv blocks until
// the first broadcast. Use [Receiver.Borrow] to read the initial value.
func New[T any](initial T) (*Sender[T], *Receiver[T]) {
	s := &shared[T]{
		cond:       syncx.NewCond(),
		closedCond: syncx.NewCond(),
		value:      initial,
		recvs:      1,
	}
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// Sender is the producing endpoint of a watch channel. It is a
// single-owner handle: not safe for concurrent use.
type Sender[T any] struct {
	s *shared[T]
}

// Broadcast publishes a new value to all receivers, overwriting the
// previous one. It returns [ErrClosed] when no receiver handles remain.
//
// The slot overwrite and the version bump happen in one critical
// section, so a reader can never pair a new version with a stale value.
func (tx *Sender[T]) Broadcast(v T) error {
	s := tx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	if s.recvs == 0 {
		g.Release()
		return ErrClosed
	}
	s.value = v
	s.version += versionStep
	g.Release()

	s.cond.Broadcast()
	return nil
}

// Closed reports whether every receiver handle has been closed.
func (tx *Sender[T]) Closed() bool {
	var n int
	syncx.Locked(&tx.s.mu, syncx.Shared, func() { n = tx.s.recvs })
	return n == 0
}

// WaitClosed blocks until every receiver handle has been closed.
func (tx *Sender[T]) WaitClosed() {
	s := tx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	for s.recvs > 0 {
		s.closedCond.Wait(g)
	}
	g.Release()
}

// Close marks the channel closed and wakes every waiting receiver.
// Receivers that have not observed the latest broadcast value still see
// it on their next Recv before closure is reported. Close is
// idempotent.
func (tx *Sender[T]) Close() {
	s := tx.s

	syncx.Locked(&s.mu, syncx.Exclusive, func() { s.version |= closedBit })
	s.cond.Broadcast()
}

// Receiver is a consuming endpoint of a watch channel. Each handle is
// single-owner: share the channel between goroutines by giving each its
// own [Receiver.Clone], not by sharing one handle.
type Receiver[T any] struct {
	s    *shared[T]
	seen uint64 // version of the last observed value
	once sync.Once
}

// Recv returns the latest broadcast value not yet observed by this
// handle, blocking until one is published. It returns [ErrClosed] once
// the channel is closed and no unseen value remains.
//
// If an unseen value is already published when Recv is called, it is
// delivered immediately, even when the channel has since closed: a
// final value always lands before closure is reported.
func (rx *Receiver[T]) Recv() (T, error) {
	s := rx.s

	g := syncx.NewGuard(&s.mu, syncx.Shared)
	defer g.Release()

	if latest := s.version &^ closedBit; latest != rx.seen {
		rx.seen = latest
		return s.value, nil
	}
	for s.version&closedBit == 0 && s.version&^closedBit == rx.seen {
		s.cond.Wait(g)
	}
	if latest := s.version &^ closedBit; latest != rx.seen {
		rx.seen = latest
		return s.value, nil
	}
	var zero T
	return zero, ErrClosed
}

// Clone creates an additional receiver handle. The clone starts at this
// receiver's observed version, so it does not re-observe a value the
// parent already saw.
func (rx *Receiver[T]) Clone() *Receiver[T] {
	s := rx.s
	syncx.Locked(&s.mu, syncx.Exclusive, func() { s.recvs++ })
	return &Receiver[T]{s: s, seen: rx.seen}
}

// Borrow returns a read-only view of the current value. The view holds
// the channel's lock in shared mode until released: concurrent borrows
// and Recv calls proceed, but broadcasts block. Hold views briefly and
// always release them.
//
// Borrow does not mark the value as observed; a following Recv behaves
// as if the borrow never happened.
func (rx *Receiver[T]) Borrow() View[T] {
	return View[T]{
		s: rx.s,
		g: syncx.NewGuard(&rx.s.mu, syncx.Shared),
	}
}

// Close releases this receiver handle. When the last receiver handle
// closes, the channel is dead: [Sender.Closed] reports true,
// [Sender.WaitClosed] returns, and further broadcasts fail. Close is
// idempotent per handle.
func (rx *Receiver[T]) Close() {
	rx.once.Do(func() {
		s := rx.s

		var last bool
		syncx.Locked(&s.mu, syncx.Exclusive, func() {
			s.recvs--
			last = s.recvs == 0
		})
		if last {
			s.closedCond.Broadcast()
		}
	})
}

// View is a read-only view of a watch channel's current value, holding
// a shared-mode lock for its lifetime. Obtain one via
// [Receiver.Borrow]; call [View.Release] as soon as the value has been
// read.
type View[T any] struct {
	s *shared[T]
	g *syncx.Guard
}

// Value returns the value the view refers to.
func (v View[T]) Value() T {
	return v.s.value
}

// Release drops the view's lock. The view must not be used afterwards.
// Release is idempotent.
func (v View[T]) Release() {
	v.g.Release()
}
