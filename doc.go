// Package syncx provides cross-goroutine message-passing channels built
// on a classic monitor pattern: shared state protected by a lock, with
// condition variables for blocking and wakeup.
//
// # Channels
//
// Three channel flavors live in subpackages, each exposed as a disjoint
// sender/receiver handle pair over reference-shared state:
//
//   - [github.com/baxromumarov/syncx/oneshot]: a single-use channel that
//     delivers exactly one value from one producer to one consumer.
//     Supports fire-and-forget and synchronous (wait-for-receipt) sends.
//   - [github.com/baxromumarov/syncx/mpsc]: a reusable bounded FIFO queue
//     shared by any number of cloned senders and a single receiver, with
//     non-blocking, blocking, timed, and context-aware variants of send
//     and receive.
//   - [github.com/baxromumarov/syncx/watch]: a single-slot broadcaster
//     where only the latest value is ever visible. Receivers can block
//     for the next unseen value, borrow a read-locked view of the
//     current one, or be cloned without re-observing values the parent
//     already saw.
//
// Handles are single-owner values: a handle must not be used from more
// than one goroutine at a time. Where a channel permits multiple
// endpoints on one side (mpsc senders, watch receivers), additional
// handles are created explicitly via Clone. Discarded handles must be
// closed; closing a handle is the peer's signal that the endpoint is
// gone.
//
// # Monitor utilities
//
// The root package holds the pieces the channels are built from:
//
//   - [Locked]: runs a function while holding a lock in a chosen
//     [Mode], releasing on every exit path.
//   - [Guard]: an explicit lock guard with [Guard.Lock],
//     [Guard.Unlock], and [Guard.OwnsLock], for critical sections that
//     must be suspended (condition waits) or outlive a single scope
//     (watch's borrowed views). Locking while already owning, or
//     unlocking while not owning, panics.
//   - [Cond]: a condition variable that suspends atomically with
//     releasing a [Guard] and supports plain, timed, and context-aware
//     waits. Wakeup is broadcast-only, so every wait must sit in a
//     predicate re-check loop.
//
// The [Shared] acquisition mode matters only for watch, whose readers
// may overlap each other but never a broadcast; everything else locks
// exclusively.
package syncx
