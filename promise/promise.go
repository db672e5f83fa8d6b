// Package promise provides Deferred, a single-assignment future used as the
// suspension point between a running workflow and its caller.
//
// A Deferred is created empty and settled exactly once, by Resolve or
// Reject. Any number of readers may Wait on it; all observe the same
// outcome. Settling an already settled Deferred is a no-op.
package promise

import (
	"context"
	"sync"
)

// Deferred is a single-assignment future. It is safe for concurrent use.
type Deferred[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// New creates an unsettled Deferred.
func New[T any]() *Deferred[T] {
	return &Deferred[T]{done: make(chan struct{})}
}

// Resolved creates a Deferred already resolved with v.
func Resolved[T any](v T) *Deferred[T] {
	d := New[T]()
	d.Resolve(v)
	return d
}

// Resolve settles the Deferred with v. It reports whether this call won.
func (d *Deferred[T]) Resolve(v T) bool {
	won := false
	d.once.Do(func() {
		d.value = v
		won = true
		close(d.done)
	})
	return won
}

// Reject settles the Deferred with err. It reports whether this call won.
func (d *Deferred[T]) Reject(err error) bool {
	won := false
	d.once.Do(func() {
		d.err = err
		won = true
		close(d.done)
	})
	return won
}

// Done returns a channel closed once the Deferred is settled.
func (d *Deferred[T]) Done() <-chan struct{} { return d.done }

// Settled reports whether the Deferred has been resolved or rejected.
func (d *Deferred[T]) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the Deferred is settled or ctx is done.
func (d *Deferred[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the outcome without blocking. ok is false while unsettled.
func (d *Deferred[T]) Peek() (value T, err error, ok bool) {
	if !d.Settled() {
		var zero T
		return zero, nil, false
	}
	return d.value, d.err, true
}
