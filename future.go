// Copyright 2026 skylon07.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://github.com/skylon07/scopely/blob/main/LICENSE.md
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scopely

import (
	"context"
	"errors"
	"sync"
)

// ErrFutureAlreadyCompleted is raised when resolving or rejecting a Completer
// whose future already holds a result. Use TryResolve/TryReject to race for
// the first completion instead.
var ErrFutureAlreadyCompleted = errors.New("future already completed")

// Completer is the writing side of a Future: a one-shot completion primitive.
// The first of Resolve/Reject wins; the Try variants report whether the
// attempt won the race.
type Completer[T any] struct {
	future *Future[T]
}

// NewCompleter creates a Completer with a fresh pending Future.
func NewCompleter[T any]() *Completer[T] {
	return &Completer[T]{future: newFuture[T]()}
}

// Future returns the readable side of the completer.
func (c *Completer[T]) Future() *Future[T] {
	return c.future
}

// Resolve completes the future with a value. It panics
// ErrFutureAlreadyCompleted if the future already holds a result.
func (c *Completer[T]) Resolve(value T) {
	if !c.TryResolve(value) {
		panic(ErrFutureAlreadyCompleted)
	}
}

// TryResolve attempts to complete the future with a value and reports whether
// the attempt won.
func (c *Completer[T]) TryResolve(value T) bool {
	return c.future.trySettle(value, nil)
}

// Reject completes the future with an error. It panics
// ErrFutureAlreadyCompleted if the future already holds a result.
func (c *Completer[T]) Reject(err error) {
	if !c.TryReject(err) {
		panic(ErrFutureAlreadyCompleted)
	}
}

// TryReject attempts to complete the future with an error and reports whether
// the attempt won.
func (c *Completer[T]) TryReject(err error) bool {
	var zero T
	return c.future.trySettle(zero, err)
}

// IsCompleted returns true once the future holds a result.
func (c *Completer[T]) IsCompleted() bool {
	return c.future.IsCompleted()
}

// Future is a one-shot asynchronous result: pending until its completer
// settles it with a value or an error, exactly once.
//
// Completion is synchronous: OnComplete callbacks run on the goroutine that
// settled the future, before the settling call returns. This is what lets a
// scope's CancelAll observe and publish terminal states without yielding.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	value     T
	err       error
	callbacks []func(value T, err error)
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved creates a Future already completed with the given value.
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.trySettle(value, nil)

	return f
}

// Rejected creates a Future already completed with the given error.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()

	var zero T
	f.trySettle(zero, err)

	return f
}

// trySettle records the result if the future is still pending, then runs the
// registered callbacks synchronously. It reports whether the attempt won.
func (f *Future[T]) trySettle(value T, err error) bool {
	f.mu.Lock()

	if f.completed {
		f.mu.Unlock()
		return false
	}

	f.completed = true
	f.value = value
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(value, err)
	}

	return true
}

// Await blocks until the future settles or the context is done, and returns
// the result. A context interruption returns the context's error; the future
// itself stays pending.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()

		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed when the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the settled result. ok is false while the future is pending.
func (f *Future[T]) Result() (value T, err error, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.value, f.err, f.completed
}

// IsCompleted returns true once the future holds a result.
func (f *Future[T]) IsCompleted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.completed
}

// OnComplete registers a callback receiving the result. On an already-settled
// future the callback runs immediately, on the calling goroutine; otherwise
// it runs synchronously on the goroutine that settles the future.
func (f *Future[T]) OnComplete(cb func(value T, err error)) {
	f.mu.Lock()

	if !f.completed {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}

	value, err := f.value, f.err
	f.mu.Unlock()

	cb(value, err)
}
