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

	"github.com/samber/lo"
	"github.com/skylon07/scopely/internal/xerrors"
)

// Teardown is a function that cleans up resources held by a subscription.
// It will be called only once, when the Subscription is canceled.
type Teardown func()

// TeardownWithContext is a Teardown that receives the cancelling context.
type TeardownWithContext func(ctx context.Context)

// Unsubscribable represents any type that can be unsubscribed from.
// It provides a common interface for cancellation operations.
type Unsubscribable interface {
	Unsubscribe()
	UnsubscribeWithContext(ctx context.Context)
}

// Subscription represents an ongoing execution of an event sequence. It
// allows cancelling that execution and, for single-subscription sequences,
// pausing it. Pause and Resume nest: the sequence is paused while the nesting
// count is above zero, and pause-state transitions fire the hooks registered
// by the sequence's controller.
type Subscription interface {
	Unsubscribable

	Add(teardown Teardown)
	AddWithContext(teardown TeardownWithContext)
	AddUnsubscribable(unsubscribable Unsubscribable)
	IsClosed() bool
	Pause()
	Resume()
	IsPaused() bool
	Wait() // Note: using .Wait() is not recommended.
}

type subscriptionImpl struct {
	mu            sync.Mutex
	done          bool
	pauseCount    int
	finalizers    []Teardown
	ctxFinalizers []TeardownWithContext
}

var _ Subscription = (*subscriptionImpl)(nil)

// NewSubscription creates a new Subscription. When `teardown` is nil, nothing
// is added. When the subscription is already disposed, the `teardown` callback
// is triggered immediately.
func NewSubscription(teardown Teardown) Subscription {
	s := &subscriptionImpl{
		finalizers:    []Teardown{},
		ctxFinalizers: []TeardownWithContext{},
	}
	if teardown != nil {
		s.finalizers = append(s.finalizers, teardown)
	}

	return s
}

// NewSubscriptionWithContext creates a new Subscription whose teardown
// receives the cancelling context.
func NewSubscriptionWithContext(teardown TeardownWithContext) Subscription {
	s := &subscriptionImpl{
		finalizers:    []Teardown{},
		ctxFinalizers: []TeardownWithContext{},
	}

	if teardown != nil {
		s.ctxFinalizers = append(s.ctxFinalizers, teardown)
	}

	return s
}

// Add receives a finalizer to execute upon unsubscription. When `teardown`
// is nil, nothing is added. When the subscription is already disposed, the `teardown`
// callback is triggered immediately.
//
// This method is thread-safe.
//
// Implements Subscription.
func (s *subscriptionImpl) Add(teardown Teardown) {
	if teardown == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		_ = execFinalizer(teardown)
		return
	}

	s.finalizers = append(s.finalizers, teardown)
}

// AddWithContext registers a teardown function that receives a context when
// the subscription is unsubscribed.
//
// Implements Subscription.
func (s *subscriptionImpl) AddWithContext(teardown TeardownWithContext) {
	if teardown == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		_ = execFinalizerWithContext(teardown, context.Background())
		return
	}

	s.ctxFinalizers = append(s.ctxFinalizers, teardown)
}

// AddUnsubscribable merges multiple subscriptions into one. The method does nothing
// if `unsubscribable` is nil.
//
// This method is thread-safe.
//
// Implements Subscription.
func (s *subscriptionImpl) AddUnsubscribable(unsubscribable Unsubscribable) {
	if unsubscribable == nil {
		return
	}

	s.Add(func() {
		unsubscribable.Unsubscribe()
	})
}

// Unsubscribe disposes the resources held by the subscription. May, for
// instance, cancel an ongoing sequence execution or cancel any other type of
// work that started when the Subscription was created.
//
// This method is thread-safe. Finalizers are executed in sequence.
//
// Implements Unsubscribable.
func (s *subscriptionImpl) Unsubscribe() {
	s.UnsubscribeWithContext(context.Background())
}

// UnsubscribeWithContext cancels the subscription and executes all registered
// teardown functions with the provided context. This allows cancellation-aware
// cleanup logic.
//
// Implements Unsubscribable.
func (s *subscriptionImpl) UnsubscribeWithContext(ctx context.Context) {
	s.mu.Lock()

	if s.done {
		s.mu.Unlock()
		return
	}

	s.done = true
	finals := s.finalizers
	ctxFinals := s.ctxFinalizers
	s.finalizers = nil
	s.ctxFinalizers = nil
	s.mu.Unlock()

	var errs []error

	for _, f := range finals {
		if err := execFinalizer(f); err != nil {
			errs = append(errs, err)
		}
	}

	for _, f := range ctxFinals {
		if err := execFinalizerWithContext(f, ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		panic(xerrors.Join(errs...))
	}
}

// IsClosed returns true if the subscription has been disposed
// or if unsubscription is in progress.
//
// Implements Subscription.
func (s *subscriptionImpl) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done
}

// Pause increments the pause nesting count. A bare subscription has no
// producer to throttle, so only the count is tracked; subscriber-backed
// subscriptions buffer notifications and surface the transition to their
// controller.
//
// Implements Subscription.
func (s *subscriptionImpl) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}

	s.pauseCount++
}

// Resume decrements the pause nesting count. Resuming a non-paused
// subscription does nothing.
//
// Implements Subscription.
func (s *subscriptionImpl) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done || s.pauseCount == 0 {
		return
	}

	s.pauseCount--
}

// IsPaused returns true while the pause nesting count is above zero.
//
// Implements Subscription.
func (s *subscriptionImpl) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pauseCount > 0
}

// Wait blocks until a Subscription is canceled. It can be used for blocking
// until a sequence throws an error or completes.
//
// Please use it carefully. Calling this method is against the Reactive
// Programming Manifesto.
//
// Note: using .Wait() is not recommended.
//
// Implements Subscription.
func (s *subscriptionImpl) Wait() {
	ch := make(chan struct{}, 1)

	// There is no guarantee that this callback will be the last finalizer
	// added to this subscription.
	s.Add(func() {
		ch <- struct{}{}
	})

	<-ch
	close(ch)
}

// execFinalizer runs the finalizer and catches any panics, converting them to errors.
func execFinalizer(finalizer func()) (err error) {
	lo.TryCatchWithErrorValue(
		func() error {
			finalizer()
			return nil
		},
		func(e any) {
			err = newUnsubscriptionError(recoverValueToError(e))
		},
	)

	return err
}

func execFinalizerWithContext(finalizer TeardownWithContext, ctx context.Context) (err error) {
	lo.TryCatchWithErrorValue(
		func() error {
			finalizer(ctx)
			return nil
		},
		func(e any) {
			err = newUnsubscriptionError(recoverValueToError(e))
		},
	)

	return err
}
