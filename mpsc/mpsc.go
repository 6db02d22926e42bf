// Package mpsc implements a reusable bounded multi-producer,
// single-consumer FIFO channel.
//
// A channel is created with [New], which fixes its capacity and returns
// a [Sender] and [Receiver] pair. Additional producers are created
// explicitly with [Sender.Clone]; there is no receiver clone. Send and
// receive each come in non-blocking, blocking, timed, and context-aware
// variants, gated by the two boundary conditions of a bounded queue:
// senders wait for the buffer to be non-full, the receiver waits for it
// to be non-empty.
//
// There is no explicit channel-wide close operation; closing follows the
// handles. Once every sender handle has been closed, receive operations
// drain the buffered values and then report [ErrClosed]. Once the
// receiver handle has been closed, every send variant reports
// [ErrClosed] instead of enqueuing into a queue nobody will read.
//
// FIFO order is preserved across all senders relative to the receiver:
// the queue itself is strictly ordered, though two sends racing from
// different goroutines may enqueue in either order.
package mpsc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/baxromumarov/syncx"
)

// ErrClosed is returned by send operations after the receiver has been
// closed, and by receive operations after every sender has been closed
// and the buffer has drained.
var ErrClosed = errors.New("mpsc: channel closed")

// ErrFull is returned by [Sender.TrySend] when the buffer is at
// capacity.
var ErrFull = errors.New("mpsc: buffer full")

// ErrEmpty is returned by [Receiver.TryRecv] when the buffer holds no
// values.
var ErrEmpty = errors.New("mpsc: buffer empty")

// ErrTimeout is returned by the timed send and receive variants when
// the deadline elapses before the operation could take effect. It is
// distinct from [ErrClosed]: the channel may still become usable.
var ErrTimeout = errors.New("mpsc: deadline elapsed")

type shared[T any] struct {
	mu sync.RWMutex

	nonfull  *syncx.Cond // notified when space frees or the receiver closes
	nonempty *syncx.Cond // notified when a value lands or the last sender closes

	// ring storage; len(buf) is the fixed capacity
	buf   []T
	head  int
	count int

	senders  int // live sender handles
	recvGone bool
}

func (s *shared[T]) push(v T) {
	s.buf[(s.head+s.count)%len(s.buf)] = v
	s.count++
}

func (s *shared[T]) pop() T {
	var zero T
	v := s.buf[s.head]
	s.buf[s.head] = zero
	s.head = (s.head + 1) % len(s.buf)
	s.count--
	return v
}

// New creates an mpsc channel holding at most capacity values and
// returns its handle pair. Panics if capacity <= 0.
func New[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity <= 0 {
		panic("mpsc: New requires capacity > 0")
	}
	s := &shared[T]{
		nonfull:  syncx.NewCond(),
		nonempty: syncx.NewCond(),
		buf:      make([]T, capacity),
		senders:  1,
	}
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// Sender is a producing endpoint of an mpsc channel. Each handle is
// single-owner: share the channel between goroutines by giving each its
// own [Sender.Clone], not by sharing one handle.
type Sender[T any] struct {
	s    *shared[T]
	once sync.Once
}

// TrySend enqueues the value if the buffer has room, without blocking.
// It returns [ErrFull] when the buffer is at capacity and [ErrClosed]
// when the receiver has been closed.
func (tx *Sender[T]) TrySend(v T) error {
	s := tx.s

	var err error
	syncx.Locked(&s.mu, syncx.Exclusive, func() {
		switch {
		case s.recvGone:
			err = ErrClosed
		case s.count >= len(s.buf):
			err = ErrFull
		default:
			s.push(v)
		}
	})
	if err != nil {
		return err
	}

	s.nonempty.Broadcast()
	return nil
}

// Send enqueues the value, blocking while the buffer is full. It
// returns [ErrClosed] if the receiver is closed before room opens up.
func (tx *Sender[T]) Send(v T) error {
	s := tx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	for {
		if s.recvGone {
			g.Release()
			return ErrClosed
		}
		if s.count < len(s.buf) {
			break
		}
		s.nonfull.Wait(g)
	}
	s.push(v)
	g.Release()

	s.nonempty.Broadcast()
	return nil
}

// SendTimeout is [Sender.Send] with a bounded wait. It returns
// [ErrTimeout], without enqueuing, if no room opens up within d.
func (tx *Sender[T]) SendTimeout(v T, d time.Duration) error {
	s := tx.s
	deadline := time.Now().Add(d)

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	for {
		if s.recvGone {
			g.Release()
			return ErrClosed
		}
		if s.count < len(s.buf) {
			break
		}
		remain := time.Until(deadline)
		if remain <= 0 {
			g.Release()
			return ErrTimeout
		}
		s.nonfull.WaitTimeout(g, remain)
	}
	s.push(v)
	g.Release()

	s.nonempty.Broadcast()
	return nil
}

// SendContext is [Sender.Send] that also unblocks when ctx is done,
// returning ctx's error without enqueuing.
func (tx *Sender[T]) SendContext(ctx context.Context, v T) error {
	s := tx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	for {
		if s.recvGone {
			g.Release()
			return ErrClosed
		}
		if s.count < len(s.buf) {
			break
		}
		if err := s.nonfull.WaitContext(ctx, g); err != nil {
			g.Release()
			return err
		}
	}
	s.push(v)
	g.Release()

	s.nonempty.Broadcast()
	return nil
}

// Clone creates an additional sender handle feeding the same channel.
// This is the only multi-producer mechanism. Cloning a closed handle is
// a contract violation and leaves the channel's sender count wrong;
// clone first, close later.
func (tx *Sender[T]) Clone() *Sender[T] {
	s := tx.s
	syncx.Locked(&s.mu, syncx.Exclusive, func() { s.senders++ })
	return &Sender[T]{s: s}
}

// Close releases this sender handle. Once every sender handle has been
// closed, the receiver drains the remaining values and then observes
// [ErrClosed]. Close is idempotent per handle.
func (tx *Sender[T]) Close() {
	tx.once.Do(func() {
		s := tx.s

		var last bool
		syncx.Locked(&s.mu, syncx.Exclusive, func() {
			s.senders--
			last = s.senders == 0
		})
		if last {
			s.nonempty.Broadcast()
		}
	})
}

// Receiver is the consuming endpoint of an mpsc channel. It is a
// single-owner handle: not safe for concurrent use.
type Receiver[T any] struct {
	s    *shared[T]
	once sync.Once
}

// TryRecv dequeues the oldest value if one is present, without
// blocking. It returns [ErrEmpty] when the buffer is empty and
// [ErrClosed] when the channel has closed and drained.
func (rx *Receiver[T]) TryRecv() (T, error) {
	s := rx.s

	var (
		v   T
		err error
	)
	syncx.Locked(&s.mu, syncx.Exclusive, func() {
		switch {
		case s.recvGone:
			err = ErrClosed
		case s.count > 0:
			v = s.pop()
		case s.senders == 0:
			err = ErrClosed
		default:
			err = ErrEmpty
		}
	})
	if err != nil {
		var zero T
		return zero, err
	}

	s.nonfull.Broadcast()
	return v, nil
}

// Recv dequeues the oldest value, blocking while the buffer is empty.
// It returns [ErrClosed] once every sender has been closed and the
// buffer has drained.
func (rx *Receiver[T]) Recv() (T, error) {
	s := rx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	for {
		if s.recvGone {
			g.Release()
			var zero T
			return zero, ErrClosed
		}
		if s.count > 0 {
			break
		}
		if s.senders == 0 {
			g.Release()
			var zero T
			return zero, ErrClosed
		}
		s.nonempty.Wait(g)
	}
	v := s.pop()
	g.Release()

	s.nonfull.Broadcast()
	return v, nil
}

// RecvTimeout is [Receiver.Recv] with a bounded wait. It returns
// [ErrTimeout] if no value arrives within d.
func (rx *Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	s := rx.s
	deadline := time.Now().Add(d)

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	for {
		if s.recvGone {
			g.Release()
			var zero T
			return zero, ErrClosed
		}
		if s.count > 0 {
			break
		}
		if s.senders == 0 {
			g.Release()
			var zero T
			return zero, ErrClosed
		}
		remain := time.Until(deadline)
		if remain <= 0 {
			g.Release()
			var zero T
			return zero, ErrTimeout
		}
		s.nonempty.WaitTimeout(g, remain)
	}
	v := s.pop()
	g.Release()

	s.nonfull.Broadcast()
	return v, nil
}

// RecvContext is [Receiver.Recv] that also unblocks when ctx is done,
// returning ctx's error.
func (rx *Receiver[T]) RecvContext(ctx context.Context) (T, error) {
	s := rx.s

	g := syncx.NewGuard(&s.mu, syncx.Exclusive)
	for {
		if s.recvGone {
			g.Release()
			var zero T
			return zero, ErrClosed
		}
		if s.count > 0 {
			break
		}
		if s.senders == 0 {
			g.Release()
			var zero T
			return zero, ErrClosed
		}
		if err := s.nonempty.WaitContext(ctx, g); err != nil {
			g.Release()
			var zero T
			return zero, err
		}
	}
	v := s.pop()
	g.Release()

	s.nonfull.Broadcast()
	return v, nil
}

// Close releases the receiver handle. Senders parked in a blocking send
// are woken and observe [ErrClosed]. Close is idempotent.
func (rx *Receiver[T]) Close() {
	rx.once.Do(func() {
		s := rx.s
		syncx.Locked(&s.mu, syncx.Exclusive, func() { s.recvGone = true })
		s.nonfull.Broadcast()
	})
}

// Len returns the number of buffered values. The value may be stale as
// soon as it is returned in concurrent contexts.
func (rx *Receiver[T]) Len() int {
	var n int
	syncx.Locked(&rx.s.mu, syncx.Exclusive, func() { n = rx.s.count })
	return n
}

// Cap returns the channel's fixed capacity.
func (rx *Receiver[T]) Cap() int {
	return len(rx.s.buf)
}

// Len returns the number of buffered values, as seen from the sending
// side. The value may be stale as soon as it is returned.
func (tx *Sender[T]) Len() int {
	var n int
	syncx.Locked(&tx.s.mu, syncx.Exclusive, func() { n = tx.s.count })
	return n
}

// Cap returns the channel's fixed capacity.
func (tx *Sender[T]) Cap() int {
	return len(tx.s.buf)
}
