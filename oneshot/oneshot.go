// Package oneshot implements a single-use channel that delivers exactly
// one value from a single producer to a single consumer.
//
// A channel is created with [New], which returns a [Sender] and
// [Receiver] pair over shared state. The sender delivers its value
// either fire-and-forget ([Sender.SendAsync]) or synchronously,
// blocking until the value is consumed or the channel is closed
// ([Sender.SendSync]). The receiver consumes with [Receiver.Recv]
// (blocking) or [Receiver.TryRecv] (non-blocking).
//
// Either side may close the channel explicitly; a handle that is
// discarded without having delivered or consumed must be closed so the
// peer does not block forever. Once a value has been consumed or the
// channel closed, every further operation reports [ErrClosed]: delivery
// is at most once.
package oneshot

import (
	"errors"
	"sync"

	"github.com/baxromumarov/syncx"
)

// ErrClosed is returned when the channel has been closed, or when the
// single value has already been consumed.
var ErrClosed = errors.New("oneshot: channel closed")

// ErrEmpty is returned by [Receiver.TryRecv] when no value has been
// sent yet.
var ErrEmpty = errors.New("oneshot: no value ready")

// state is the channel's lifecycle position. Transitions are performed
// under the exclusive lock via swap, which also reports the previous
// state so the caller can decide, after the critical section, which
// cond (if any) to wake.
type state uint8

const (
	stateInit       state = iota
	stateSent             // value stored, no one waiting
	stateWaitSend         // receiver parked, no value yet
	stateWaitRecv         // sender parked, value already stored
	stateClosed           // closed with no pending value for the receiver
	stateClosedRecv       // value consumed
)

func (s state) isClosed() bool {
	return s == stateClosed || s == stateClosedRecv
}

type shared[T any] struct {
	mu sync.RWMutex

	txCond *syncx.Cond // notified when the receiver consumes or closes
	rxCond *syncx.Cond // notified when a value lands or the sender closes

	st state

	value    T
	hasValue bool
}

func (s *shared[T]) swap(next state) state {
	prev := s.st
	s.st = next
	return prev
}

// take moves the stored value out, leaving the slot empty.
func (s *shared[T]) take() (T, bool) {
	var zero T
	if !s.hasValue {
		return zero, false
	}
	v := s.value
	s.value, s.hasValue = zero, false
	return v, true
}

// New creates a oneshot channel and returns its handle pair.
func New[T any]() (*Sender[T], *Receiver[T]) {
	s := &shared[T]{
		txCond: syncx.NewCond(),
		rxCond: syncx.NewCond(),
	}
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// Sender is the producing endpoint of a oneshot channel. It is a
// single-owner handle: not safe for concurrent use.
type Sender[T any] struct {
	s *shared[T]
}

// SendAsync stores the value in the channel and returns immediately,
// without waiting for the receiver to consume it. It returns [ErrClosed]
// if the channel has already been closed.
func (tx *Sender[T]) SendAsync(v T) error {
	s := tx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	if s.st.isClosed() {
		g.Release()
		return ErrClosed
	}
	s.value, s.hasValue = v, true
	prev := s.swap(stateSent)
	g.Release()

	if prev == stateWaitSend {
		s.rxCond.Broadcast()
	}
	return nil
}

// SendSync stores the value and blocks until the receive completes: the
// receiver consumes the value (nil), or the receiver closes the channel
// without consuming it ([ErrClosed]).
func (tx *Sender[T]) SendSync(v T) error {
	s := tx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	defer g.Release()

	if s.st.isClosed() {
		return ErrClosed
	}

	s.value, s.hasValue = v, true
	if prev := s.swap(stateWaitRecv); prev == stateWaitSend {
		// receiver already parked in Recv; hand the value over
		s.rxCond.Broadcast()
	}
	for s.st == stateWaitRecv {
		s.txCond.Wait(g)
	}

	// the channel is spent either way once a synchronous send returns
	if prev := s.swap(stateClosed); prev != stateClosedRecv {
		return ErrClosed
	}
	return nil
}

// Close closes the channel. A receiver parked in [Receiver.Recv] is
// woken and observes the closure. Close is idempotent.
//
// A value stored by a send that completed before Close remains
// unreachable afterwards; sequence Close after a final [Sender.SendAsync]
// only if losing the value is acceptable.
func (tx *Sender[T]) Close() {
	s := tx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	prev := s.swap(stateClosed)
	g.Release()

	if prev == stateWaitSend {
		s.rxCond.Broadcast()
	}
}

// Receiver is the consuming endpoint of a oneshot channel. It is a
// single-owner handle: not safe for concurrent use.
type Receiver[T any] struct {
	s *shared[T]
}

// Recv blocks until a value is available and consumes it. It returns
// [ErrClosed] if the channel is closed before a value lands, or if the
// value was already consumed.
func (rx *Receiver[T]) Recv() (T, error) {
	s := rx.s

	var (
		v    T
		ok   bool
		prev state
	)

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	switch {
	case s.st.isClosed():
		g.Release()
		var zero T
		return zero, ErrClosed

	case s.st == stateSent || s.st == stateWaitRecv:
		// value available, sender possibly parked in SendSync
		v, ok = s.take()
		prev = s.swap(stateClosedRecv)

	default:
		// no value yet; park until a send lands or the sender closes
		s.swap(stateWaitSend)
		for s.st == stateWaitSend {
			s.rxCond.Wait(g)
		}
		v, ok = s.take()
		if ok {
			prev = s.swap(stateClosedRecv)
		}
	}
	g.Release()

	if prev == stateWaitRecv {
		// sender parked in SendSync; its receive has completed
		s.txCond.Broadcast()
	}

	if !ok {
		var zero T
		return zero, ErrClosed
	}
	return v, nil
}

// TryRecv consumes the value if one is available, without blocking.
// It returns [ErrEmpty] when no value has been sent yet and [ErrClosed]
// when the channel is closed or the value already consumed.
func (rx *Receiver[T]) TryRecv() (T, error) {
	s := rx.s

	var (
		v    T
		ok   bool
		prev state
	)

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	switch {
	case s.st.isClosed():
		g.Release()
		var zero T
		return zero, ErrClosed

	case s.st == stateSent || s.st == stateWaitRecv:
		v, ok = s.take()
		prev = s.swap(stateClosedRecv)
	}
	g.Release()

	if prev == stateWaitRecv {
		s.txCond.Broadcast()
	}

	if !ok {
		var zero T
		return zero, ErrEmpty
	}
	return v, nil
}

// Close closes the channel. A sender parked in [Sender.SendSync] is
// woken and its send reports failure. Close is idempotent.
//
// A send that initiated before Close may still have stored a value;
// graceful shutdown can follow Close with [Receiver.TryRecv] if that
// value matters.
func (rx *Receiver[T]) Close() {
	s := rx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	prev := s.swap(stateClosed)
	g.Release()

	if prev == stateWaitRecv {
		s.txCond.Broadcast()
	}
}
