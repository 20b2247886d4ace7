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
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/skylon07/scopely/internal/xsync"
)

// Subscriber implements the Observer and Subscription interfaces. While the
// Observer is the public API for consuming the values of a sequence, all
// Observers get converted to a Subscriber to gain Subscription capabilities
// such as Unsubscribe and Pause. Subscriber is crucial for implementing
// controllers and transformers, but it is rarely used as a public API.
type Subscriber[T any] interface {
	Subscription
	Observer[T]
}

var _ Subscriber[int] = (*subscriberImpl[int])(nil)

// NewSubscriber creates a new Subscriber from an Observer. If the Observer
// is already a Subscriber, it is returned as is. Otherwise, a new Subscriber
// is created that wraps the Observer.
//
// The returned Subscriber will unsubscribe from the destination Observer when
// Unsubscribe() is called.
//
// This method is safe for concurrent use.
func NewSubscriber[T any](destination Observer[T]) Subscriber[T] {
	return NewSubscriberWithConcurrencyMode(destination, ConcurrencyModeSafe)
}

// NewUnsafeSubscriber creates a new Subscriber that performs no
// synchronization. It is not safe for concurrent producers.
func NewUnsafeSubscriber[T any](destination Observer[T]) Subscriber[T] {
	return NewSubscriberWithConcurrencyMode(destination, ConcurrencyModeUnsafe)
}

// NewEventuallySafeSubscriber creates a new Subscriber that is safe for
// concurrent use, but drops concurrent messages instead of blocking.
func NewEventuallySafeSubscriber[T any](destination Observer[T]) Subscriber[T] {
	return NewSubscriberWithConcurrencyMode(destination, ConcurrencyModeEventuallySafe)
}

// NewSubscriberWithConcurrencyMode creates a new Subscriber from an Observer
// with the given concurrency mode. If the Observer is already a Subscriber,
// it is returned as is.
//
// It is rarely used as a public API.
func NewSubscriberWithConcurrencyMode[T any](destination Observer[T], mode ConcurrencyMode) Subscriber[T] {
	// Spinlock is ignored because it is too slow when chaining transformers.
	// Spinlock should be used only for short-lived local locks.
	switch mode {
	case ConcurrencyModeSafe:
		return newSubscriberImpl(mode, xsync.NewMutexWithLock(), BackpressureBlock, destination)
	case ConcurrencyModeUnsafe:
		// No-op mutex object: Lock/Unlock calls are executed but do nothing,
		// preserving the same call-site shape as the safe variant.
		return newSubscriberImpl(mode, xsync.NewMutexWithoutLock(), BackpressureBlock, destination)
	case ConcurrencyModeEventuallySafe:
		// Real mutex, but values are dropped when the lock cannot be acquired
		// immediately.
		return newSubscriberImpl(mode, xsync.NewMutexWithLock(), BackpressureDrop, destination)
	default:
		panic(ErrInvalidConcurrencyMode)
	}
}

// newSubscriberImpl creates a new subscriber implementation with the specified
// synchronization behavior and destination observer.
func newSubscriberImpl[T any](mode ConcurrencyMode, mu xsync.Mutex, backpressure Backpressure, destination Observer[T]) Subscriber[T] {
	// Protect against multiple encapsulation layers.
	if subscriber, ok := destination.(Subscriber[T]); ok {
		return subscriber
	}

	subscriber := &subscriberImpl[T]{
		status:       0,
		backpressure: backpressure,

		mu:          mu,
		destination: destination,

		pauseMu: xsync.NewMutexWithSpinlock(),

		Subscription: NewSubscription(nil),
		mode:         mode,
	}

	if subscription, ok := destination.(Subscription); ok {
		subscription.Add(subscriber.Unsubscribe)
	}

	return subscriber
}

type subscriberImpl[T any] struct {
	// While the mutex is used for synchronization of producers, status stores
	// the state of the subscriber. Using the mutex for reading the status
	// would have created a dead lock if an Observer calls Unsubscribe(),
	// IsClosed() or IsCompleted() synchronously.
	//
	// 0 - active
	// 2 - completed or unsubscribed
	//
	// Errors do not move the status: the sequences in this package may carry
	// several errors before completing.
	status       int32
	backpressure Backpressure

	// Mutexes are much much faster than channels.
	mu          xsync.Mutex
	destination Observer[T]

	// Pause state. The queue holds notifications received while paused, in
	// arrival order; Resume flushes it. Spinlock: short-lived local lock.
	pauseMu    xsync.Mutex
	pauseCount int
	pauseQueue []lo.Tuple2[context.Context, Notification[T]]
	onPause    func()
	onResume   func()

	Subscription

	mode ConcurrencyMode
}

// Implements Observer.
func (s *subscriberImpl[T]) Next(v T) {
	s.NextWithContext(context.Background(), v)
}

// Implements Observer.
func (s *subscriberImpl[T]) NextWithContext(ctx context.Context, v T) {
	s.deliver(ctx, NewNotificationNext(v))
}

// Implements Observer.
func (s *subscriberImpl[T]) Error(err error) {
	s.ErrorWithContext(context.Background(), err)
}

// Implements Observer.
func (s *subscriberImpl[T]) ErrorWithContext(ctx context.Context, err error) {
	s.deliver(ctx, NewNotificationError[T](err))
}

// Implements Observer.
func (s *subscriberImpl[T]) Complete() {
	s.CompleteWithContext(context.Background())
}

// Implements Observer.
func (s *subscriberImpl[T]) CompleteWithContext(ctx context.Context) {
	s.deliver(ctx, NewNotificationComplete[T]())
}

// deliver pushes one notification through the subscriber: dropped when
// already terminal, queued while paused, forwarded otherwise. Complete is the
// only terminal notification and triggers unsubscription.
func (s *subscriberImpl[T]) deliver(ctx context.Context, n Notification[T]) {
	if s.destination == nil {
		return
	}

	if s.backpressure == BackpressureDrop {
		if !s.mu.TryLock() {
			OnDroppedNotification(ctx, n)
			return
		}
	} else {
		s.mu.Lock()
	}

	if atomic.LoadInt32(&s.status) != 0 {
		s.mu.Unlock()
		OnDroppedNotification(ctx, n)
		return
	}

	if s.enqueueIfPaused(ctx, n) {
		s.mu.Unlock()
		return
	}

	s.forward(ctx, n)
	s.mu.Unlock()

	if n.Kind == KindComplete {
		s.unsubscribe()
	}
}

// forward hands the notification to the destination. Caller holds s.mu.
func (s *subscriberImpl[T]) forward(ctx context.Context, n Notification[T]) {
	switch n.Kind {
	case KindNext:
		s.destination.NextWithContext(ctx, n.Value)
	case KindError:
		s.destination.ErrorWithContext(ctx, n.Err)
	case KindComplete:
		if atomic.CompareAndSwapInt32(&s.status, 0, 2) {
			s.destination.CompleteWithContext(ctx)
		} else {
			OnDroppedNotification(ctx, n)
		}
	}
}

func (s *subscriberImpl[T]) enqueueIfPaused(ctx context.Context, n Notification[T]) bool {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()

	if s.pauseCount == 0 {
		return false
	}

	s.pauseQueue = append(s.pauseQueue, lo.T2(ctx, n))

	return true
}

// Implements Subscription.
func (s *subscriberImpl[T]) Pause() {
	if atomic.LoadInt32(&s.status) != 0 {
		return
	}

	s.pauseMu.Lock()
	s.pauseCount++
	transition := s.pauseCount == 1
	hook := s.onPause
	s.pauseMu.Unlock()

	if transition && hook != nil {
		hook()
	}
}

// Implements Subscription.
func (s *subscriberImpl[T]) Resume() {
	s.pauseMu.Lock()

	if s.pauseCount == 0 {
		s.pauseMu.Unlock()
		return
	}

	s.pauseCount--
	transition := s.pauseCount == 0

	var queued []lo.Tuple2[context.Context, Notification[T]]
	if transition {
		queued = s.pauseQueue
		s.pauseQueue = nil
	}

	hook := s.onResume
	s.pauseMu.Unlock()

	if !transition {
		return
	}

	if hook != nil {
		hook()
	}

	for _, item := range queued {
		s.deliver(item.A, item.B)
	}
}

// Implements Subscription.
func (s *subscriberImpl[T]) IsPaused() bool {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()

	return s.pauseCount > 0
}

// setPauseHandlers installs the hooks fired on pause-state transitions. Used
// by controllers to surface OnPause/OnResume lifecycle callbacks.
func (s *subscriberImpl[T]) setPauseHandlers(onPause, onResume func()) {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()

	s.onPause = onPause
	s.onResume = onResume
}

// Implements Observer.
func (s *subscriberImpl[T]) IsClosed() bool {
	return atomic.LoadInt32(&s.status) != 0
}

// Implements Observer.
func (s *subscriberImpl[T]) IsCompleted() bool {
	return atomic.LoadInt32(&s.status) == 2
}

// Implements Subscription.
func (s *subscriberImpl[T]) Unsubscribe() {
	if atomic.CompareAndSwapInt32(&s.status, 0, 2) {
		s.unsubscribe()
	}
}

// Implements Subscription.
func (s *subscriberImpl[T]) UnsubscribeWithContext(ctx context.Context) {
	if atomic.CompareAndSwapInt32(&s.status, 0, 2) {
		// s.Subscription.UnsubscribeWithContext() is protected against concurrent calls.
		s.Subscription.UnsubscribeWithContext(ctx)
	}
}

func (s *subscriberImpl[T]) unsubscribe() {
	// s.Subscription.Unsubscribe() is protected against concurrent calls.
	s.Subscription.Unsubscribe()
}
