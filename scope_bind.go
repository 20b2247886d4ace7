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
	"sync"
)

// BoundFuture is a scope-bound one-shot result: the bridge between a source
// Future and the scope's cancellation fan-out.
//
// The bridge is a cancelled-wins state machine. The source's outcome and the
// scope's cancel both attempt the terminal transition; an outcome that was
// recorded but never observed (no Await or Result returned it yet) is
// overridden by cancellation. This is what makes the guarantee unconditional:
// after CancelAll returns on the calling stack, every Await of a bound
// computation returns a CancellationError stamped with the scope — code
// guarded by that error never observes the scope in a not-yet-cancelled
// state. An outcome already returned to a caller is never rescinded.
type BoundFuture[T any] struct {
	scope  *Scope
	handle *taskHandle

	mu         sync.Mutex
	done       chan struct{}
	doneClosed bool
	settled    bool
	value      T
	err        error
	cancelled  bool
	observed   bool
}

// BindFuture binds a one-shot computation to the scope and returns the bound
// result. The registration is synchronous and never suspends. It panics
// ErrScopeAlreadyCancelled when the scope is already cancelled.
//
// Cancellation is observational: the source future may still settle later,
// but its result is dropped.
func BindFuture[T any](scope *Scope, source *Future[T]) *BoundFuture[T] {
	b := &BoundFuture[T]{
		scope: scope,
		done:  make(chan struct{}),
	}

	b.handle = scope.register(b.cancel)

	source.OnComplete(b.recordOutcome)

	return b
}

// Await blocks until the bridge reaches a terminal state or the context is
// done. After the owning scope's CancelAll returned, Await returns a
// CancellationError stamped with that scope.
func (b *BoundFuture[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-b.done:
		return b.take()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the terminal state without blocking; ok is false while the
// bridge is pending.
func (b *BoundFuture[T]) Result() (value T, err error, ok bool) {
	b.mu.Lock()
	pending := !b.settled && !b.cancelled
	b.mu.Unlock()

	if pending {
		var zero T
		return zero, nil, false
	}

	value, err = b.take()

	return value, err, true
}

// Done returns a channel closed once the bridge reached a terminal state.
func (b *BoundFuture[T]) Done() <-chan struct{} {
	return b.done
}

// IsCancelled returns true when the bridge terminated by scope cancellation.
func (b *BoundFuture[T]) IsCancelled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.cancelled
}

// take consumes the terminal state: the first take of a value outcome marks
// it observed, pinning it against later cancellation.
func (b *BoundFuture[T]) take() (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancelled {
		var zero T
		return zero, newCancellationError(b.scope)
	}

	if !b.observed {
		b.observed = true
		b.scope.deregister(b.handle)
	}

	return b.value, b.err
}

// recordOutcome is the source-side transition attempt.
func (b *BoundFuture[T]) recordOutcome(value T, err error) {
	b.mu.Lock()

	if b.cancelled || b.settled {
		b.mu.Unlock()

		if err != nil {
			OnDroppedNotification(context.Background(), NewNotificationError[T](err))
		} else {
			OnDroppedNotification(context.Background(), NewNotificationNext(value))
		}

		return
	}

	b.settled = true
	b.value = value
	b.err = err
	b.closeDone()
	b.mu.Unlock()
}

// cancel is the scope-side transition attempt. It wins against any outcome
// that has not been observed.
func (b *BoundFuture[T]) cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.observed || b.cancelled {
		return
	}

	b.cancelled = true
	b.closeDone()
}

// closeDone closes the done channel once. Caller holds b.mu.
func (b *BoundFuture[T]) closeDone() {
	if !b.doneClosed {
		b.doneClosed = true
		close(b.done)
	}
}

// BindObservable binds an event sequence to the scope and returns the bound
// sequence. It is built on the stream transformer: data, errors and done pass
// through unchanged, while cancellation is split by provenance:
//
//   - the listener cancelling its own subscription forwards the cancel to the
//     source and, for a single-subscription source, signals the task done so
//     the scope forgets it;
//   - the scope cancelling the task unsubscribes the source and, if the
//     destination is still open, injects exactly one CancellationError and
//     closes — listeners observe one terminal error then done, even when the
//     cancel happened before they listened (the destination controller
//     buffers it).
//
// The registration is synchronous. It panics ErrScopeAlreadyCancelled when
// the scope is already cancelled.
func BindObservable[T any](scope *Scope, source Observable[T]) Observable[T] {
	var handle *taskHandle

	transformer := newStreamTransformer(source, StreamLifecycle[T, T]{
		OnData: func(tctx *TransformerContext[T, T], value T) {
			tctx.Destination.AddWithContext(tctx.Context, value)
		},
		OnCancel: func(tctx *TransformerContext[T, T]) Subscription {
			tctx.UnsubscribeSource()

			if !source.IsBroadcast() {
				scope.deregister(handle)
				tctx.CloseDestination()
			}

			return nil
		},
		OnDone: func(tctx *TransformerContext[T, T]) {
			tctx.CloseDestination()
			scope.deregister(handle)
		},
	})

	handle = scope.register(func() {
		transformer.tctx.UnsubscribeSource()

		if !transformer.dest.IsClosed() {
			transformer.dest.AddError(newCancellationError(scope))
			transformer.dest.Close()
		}
	})

	return transformer.dest.Stream()
}
