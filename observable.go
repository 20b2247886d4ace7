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

	"github.com/samber/lo"
)

// Backpressure is a type that represents the backpressure strategy to use.
type Backpressure int8

const (
	// BackpressureBlock blocks the producer when the destination is not ready to receive more values.
	BackpressureBlock Backpressure = iota
	// BackpressureDrop drops values when the destination is not ready to receive more values.
	BackpressureDrop
)

// ConcurrencyMode is a type that represents the concurrency mode to use.
type ConcurrencyMode int8

// ConcurrencyMode constants.
const (
	ConcurrencyModeSafe ConcurrencyMode = iota
	ConcurrencyModeUnsafe
	ConcurrencyModeEventuallySafe
)

// Observable is the producer of values. It is a representation of any set of
// values over any amount of time.
//
// The primary method of an Observable is Subscribe, which attaches an
// Observer to it. Once an Observer is subscribed, the Observable may begin to
// emit items to the Observer: any number of values, interleaved with any
// number of errors, then at most one completion. Errors here are NOT
// terminal; only completion ends the sequence.
//
// An Observable is not a stream. It is a factory for streams.
type Observable[T any] interface {
	// Subscribe subscribes an Observer to the Observable.
	//
	// The Subscribe method returns a Subscription that can be used to cancel
	// the execution, to pause it (single-subscription sequences), and to wait
	// for it to complete.
	//
	// The Subscription might be already disposed when the Subscribe method
	// returns. In this case, the Teardown function is called immediately.
	//
	// Subscribing a second time to a single-subscription sequence (a
	// controller-backed stream) panics ErrDuplicateListener synchronously.
	Subscribe(destination Observer[T]) Subscription
	SubscribeWithContext(ctx context.Context, destination Observer[T]) Subscription

	// IsBroadcast reports whether the sequence supports multiple concurrent
	// listeners. Broadcast sequences ignore pause/resume and drop values
	// emitted while nobody listens; single-subscription sequences buffer and
	// support pause.
	IsBroadcast() bool
}

var _ Observable[int] = (*observableImpl[int])(nil)

// NewObservable creates a new cold Observable. The subscribe function is
// called once per subscription and is given an Observer, to which it may emit
// values, errors and at most one completion.
//
// The subscribe function should return a Teardown function that will be
// called when the Subscription is unsubscribed, or nil when no cleanup is
// necessary.
//
// This method is safe for concurrent use.
func NewObservable[T any](subscribe func(destination Observer[T]) Teardown) Observable[T] {
	return NewObservableWithConcurrencyMode(
		func(ctx context.Context, destination Observer[T]) Teardown {
			return subscribe(destination)
		},
		ConcurrencyModeSafe,
	)
}

// NewUnsafeObservable creates a new cold Observable whose delivery performs
// no synchronization. See NewObservable.
func NewUnsafeObservable[T any](subscribe func(destination Observer[T]) Teardown) Observable[T] {
	return NewObservableWithConcurrencyMode(
		func(ctx context.Context, destination Observer[T]) Teardown {
			return subscribe(destination)
		},
		ConcurrencyModeUnsafe,
	)
}

// NewEventuallySafeObservable creates a new cold Observable that is safe for
// concurrent use, but concurrent messages are dropped. See NewObservable.
func NewEventuallySafeObservable[T any](subscribe func(destination Observer[T]) Teardown) Observable[T] {
	return NewObservableWithConcurrencyMode(
		func(ctx context.Context, destination Observer[T]) Teardown {
			return subscribe(destination)
		},
		ConcurrencyModeEventuallySafe,
	)
}

// NewObservableWithContext creates a new cold Observable whose subscribe
// function receives the subscriber's context. See NewObservable.
func NewObservableWithContext[T any](subscribe func(ctx context.Context, destination Observer[T]) Teardown) Observable[T] {
	return NewObservableWithConcurrencyMode(subscribe, ConcurrencyModeSafe)
}

// NewUnsafeObservableWithContext creates a new cold Observable with no
// synchronization whose subscribe function receives the subscriber's context.
func NewUnsafeObservableWithContext[T any](subscribe func(ctx context.Context, destination Observer[T]) Teardown) Observable[T] {
	return NewObservableWithConcurrencyMode(subscribe, ConcurrencyModeUnsafe)
}

// NewObservableWithConcurrencyMode creates a new cold Observable with the
// given concurrency mode.
//
// It is rarely used as a public API.
func NewObservableWithConcurrencyMode[T any](subscribe func(ctx context.Context, destination Observer[T]) Teardown, mode ConcurrencyMode) Observable[T] {
	return &observableImpl[T]{
		mode:      mode,
		subscribe: subscribe,
	}
}

type observableImpl[T any] struct {
	mode      ConcurrencyMode
	subscribe func(ctx context.Context, destination Observer[T]) Teardown
}

// Implements Observable.
func (s *observableImpl[T]) Subscribe(destination Observer[T]) Subscription {
	return s.SubscribeWithContext(context.Background(), destination)
}

// Implements Observable.
func (s *observableImpl[T]) SubscribeWithContext(ctx context.Context, destination Observer[T]) Subscription {
	subscription := NewSubscriberWithConcurrencyMode(destination, s.mode)

	lo.TryCatchWithErrorValue(
		func() error {
			subscription.Add(s.subscribe(ctx, subscription))
			return nil
		},
		func(e any) {
			err := recoverValueToError(e)
			subscription.ErrorWithContext(ctx, newObservableError(err))
			subscription.Unsubscribe()
		},
	)

	return subscription
}

// Implements Observable.
func (s *observableImpl[T]) IsBroadcast() bool {
	return false
}

// Just creates an Observable that emits the provided values and completes.
func Just[T any](values ...T) Observable[T] {
	return NewUnsafeObservable(func(destination Observer[T]) Teardown {
		for _, value := range values {
			destination.Next(value)
		}

		destination.Complete()

		return nil
	})
}

// Empty creates an Observable that completes without emitting any value.
func Empty[T any]() Observable[T] {
	return NewUnsafeObservable(func(destination Observer[T]) Teardown {
		destination.Complete()
		return nil
	})
}

// Collect collects all values emitted by the source Observable and returns
// them as a slice. It waits for the source Observable to complete before
// returning. Since errors are not terminal, the last error observed is
// returned along with the values collected.
func Collect[T any](obs Observable[T]) ([]T, error) {
	v, _, err := CollectWithContext(context.Background(), obs)
	return v, err
}

// CollectWithContext collects all values emitted by the source Observable and
// returns them as a slice. It waits for the source Observable to complete
// before returning. Since errors are not terminal, the last error observed is
// returned along with the values collected.
func CollectWithContext[T any](ctx context.Context, obs Observable[T]) ([]T, context.Context, error) {
	values := []T{}

	var lastCtx context.Context
	var lastErr error

	sub := obs.SubscribeWithContext(
		ctx,
		NewObserverWithContext(
			func(ctx context.Context, value T) {
				values = append(values, value)
			},
			func(ctx context.Context, thrown error) {
				lastErr = thrown
				lastCtx = ctx
			},
			func(ctx context.Context) {
				lastCtx = ctx
			},
		),
	)

	sub.Wait() // Note: using .Wait() is not recommended.

	return values, lastCtx, lastErr
}
