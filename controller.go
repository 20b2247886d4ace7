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
)

// ControllerHooks groups the lifecycle callbacks of a controller. Every field
// is optional. A controller carries a list of hook sets: transformers append
// their own set and the controller fans each lifecycle signal out to all
// registered sets — this is what allows several transformers to share one
// destination (see MergeStreams).
type ControllerHooks struct {
	// OnListen fires when the stream gets its (first) listener.
	OnListen func()
	// OnCancel fires when the listener's subscription is disposed, whether by
	// an explicit Unsubscribe or by the delivery of the done event. Broadcast
	// controllers fire it only when the last listener leaves while the
	// controller is still open, never on Close.
	OnCancel func()
	// OnPause / OnResume fire on pause-state transitions of the listener's
	// subscription. Broadcast controllers never fire them.
	OnPause  func()
	OnResume func()
}

// DestinationController is the writing side of an event sequence: a sink for
// data, errors and the done signal, plus the stream handed to consumers.
// StreamController (single-subscription) and BroadcastController implement it.
type DestinationController[T any] interface {
	Add(value T)
	AddWithContext(ctx context.Context, value T)
	// AddError pushes an error event. Errors are not terminal: the sequence
	// continues until Close.
	AddError(err error)
	AddErrorWithContext(ctx context.Context, err error)
	// Close pushes the done signal and seals the controller. Events added
	// afterwards are dropped.
	Close()
	CloseWithContext(ctx context.Context)
	IsClosed() bool

	// Stream returns the readable side of the controller.
	Stream() Observable[T]

	// AddLifecycleHooks registers a hook set and returns its deregistration
	// function.
	AddLifecycleHooks(hooks ControllerHooks) (remove func())
}

var (
	_ DestinationController[int] = (*StreamController[int])(nil)
	_ Observable[int]            = (*StreamController[int])(nil)
)

// StreamController is a single-subscription DestinationController. Events
// added before the stream is listened to are buffered in order and flushed at
// listen time; delivery is synchronous on the goroutine calling Add (there is
// no scheduler between producer and listener, which is what makes
// cancellation injected through a controller observable before the injecting
// call returns). Listening a second time — even after the first subscription
// was cancelled — panics ErrDuplicateListener synchronously.
type StreamController[T any] struct {
	mu       sync.Mutex
	mode     ConcurrencyMode
	closed   bool
	listened bool
	listener Subscriber[T]
	buffer   []lo.Tuple2[context.Context, Notification[T]]
	hooks    []*ControllerHooks
}

// NewStreamController creates a single-subscription controller with no hooks.
func NewStreamController[T any]() *StreamController[T] {
	return &StreamController[T]{mode: ConcurrencyModeSafe}
}

// NewStreamControllerWithHooks creates a single-subscription controller with
// an initial hook set.
func NewStreamControllerWithHooks[T any](hooks ControllerHooks) *StreamController[T] {
	c := NewStreamController[T]()
	c.AddLifecycleHooks(hooks)

	return c
}

// AddLifecycleHooks registers a hook set and returns its deregistration function.
//
// Implements DestinationController.
func (c *StreamController[T]) AddLifecycleHooks(hooks ControllerHooks) func() {
	entry := &hooks

	c.mu.Lock()
	c.hooks = append(c.hooks, entry)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		for i, h := range c.hooks {
			if h == entry {
				c.hooks = append(c.hooks[:i], c.hooks[i+1:]...)
				return
			}
		}
	}
}

// Implements DestinationController.
func (c *StreamController[T]) Add(value T) {
	c.AddWithContext(context.Background(), value)
}

// Implements DestinationController.
func (c *StreamController[T]) AddWithContext(ctx context.Context, value T) {
	c.dispatch(ctx, NewNotificationNext(value))
}

// Implements DestinationController.
func (c *StreamController[T]) AddError(err error) {
	c.AddErrorWithContext(context.Background(), err)
}

// Implements DestinationController.
func (c *StreamController[T]) AddErrorWithContext(ctx context.Context, err error) {
	c.dispatch(ctx, NewNotificationError[T](err))
}

// Implements DestinationController.
func (c *StreamController[T]) Close() {
	c.CloseWithContext(context.Background())
}

// Implements DestinationController.
func (c *StreamController[T]) CloseWithContext(ctx context.Context) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		OnDroppedNotification(ctx, NewNotificationComplete[T]())
		return
	}

	c.closed = true
	listener := c.listener

	if listener == nil {
		c.buffer = append(c.buffer, lo.T2(ctx, NewNotificationComplete[T]()))
		c.mu.Unlock()
		return
	}

	c.mu.Unlock()

	listener.CompleteWithContext(ctx)
}

func (c *StreamController[T]) dispatch(ctx context.Context, n Notification[T]) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		OnDroppedNotification(ctx, n)
		return
	}

	listener := c.listener

	if listener == nil {
		c.buffer = append(c.buffer, lo.T2(ctx, n))
		c.mu.Unlock()
		return
	}

	c.mu.Unlock()

	_ = processNotificationWithObserverAndContext[T](ctx, n, listener)
}

// Implements DestinationController.
func (c *StreamController[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// Stream returns the readable, single-subscription side of the controller.
//
// Implements DestinationController.
func (c *StreamController[T]) Stream() Observable[T] {
	return c
}

// Implements Observable.
func (c *StreamController[T]) IsBroadcast() bool {
	return false
}

// Implements Observable.
func (c *StreamController[T]) Subscribe(destination Observer[T]) Subscription {
	return c.SubscribeWithContext(context.Background(), destination)
}

// SubscribeWithContext attaches the unique listener. Buffered events are
// flushed synchronously before OnListen hooks fire; when the controller was
// closed before listen, the buffered done event completes the listener and
// OnListen hooks are skipped entirely.
//
// Implements Observable.
func (c *StreamController[T]) SubscribeWithContext(ctx context.Context, destination Observer[T]) Subscription {
	c.mu.Lock()

	if c.listened {
		c.mu.Unlock()
		panic(ErrDuplicateListener)
	}

	c.listened = true

	subscription := NewSubscriberWithConcurrencyMode(destination, c.mode)
	c.listener = subscription

	if impl, ok := subscription.(*subscriberImpl[T]); ok {
		impl.setPauseHandlers(c.firePause, c.fireResume)
	}

	buffered := c.buffer
	c.buffer = nil
	wasClosed := c.closed
	c.mu.Unlock()

	// Cancel hooks fire on subscription disposal: explicit Unsubscribe or
	// delivery of the done event.
	subscription.Add(c.fireCancel)

	for _, item := range buffered {
		_ = processNotificationWithObserverAndContext[T](item.A, item.B, subscription)
	}

	if !wasClosed {
		// Hooks run unguarded: a fault raised while subscribing an upstream
		// source (e.g. ErrDuplicateListener) must surface synchronously from
		// this Subscribe call.
		c.fireListen()
	}

	return subscription
}

func (c *StreamController[T]) snapshotHooks() []*ControllerHooks {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]*ControllerHooks, len(c.hooks))
	copy(snapshot, c.hooks)

	return snapshot
}

func (c *StreamController[T]) fireListen() {
	for _, h := range c.snapshotHooks() {
		if h.OnListen != nil {
			h.OnListen()
		}
	}
}

func (c *StreamController[T]) fireCancel() {
	for _, h := range c.snapshotHooks() {
		if h.OnCancel != nil {
			h.OnCancel()
		}
	}
}

func (c *StreamController[T]) firePause() {
	for _, h := range c.snapshotHooks() {
		if h.OnPause != nil {
			h.OnPause()
		}
	}
}

func (c *StreamController[T]) fireResume() {
	for _, h := range c.snapshotHooks() {
		if h.OnResume != nil {
			h.OnResume()
		}
	}
}
