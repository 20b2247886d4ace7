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
	"sync/atomic"
)

var (
	_ DestinationController[int] = (*BroadcastController[int])(nil)
	_ Observable[int]            = (*BroadcastController[int])(nil)
)

// BroadcastController is the broadcast DestinationController: any number of
// listeners may subscribe and unsubscribe at any time (fanout). Values
// received while nobody listens are not buffered: they go to the
// dropped-notification handler. Errors are not terminal. Pause/resume is a
// per-listener affair and never reaches the controller hooks: broadcast
// destinations ignore pause. OnListen hooks fire on the 0→1 listener
// transition, OnCancel hooks on 1→0 while the controller is open (not when
// Close completes the remaining listeners). Subscribing after Close immediately
// delivers done.
type BroadcastController[T any] struct {
	mu     sync.Mutex
	closed bool

	observers     sync.Map // uint32 -> Subscriber[T]
	observerIndex uint32
	observerCount int

	hooks []*ControllerHooks
}

// NewBroadcastController creates a broadcast controller with no hooks.
func NewBroadcastController[T any]() *BroadcastController[T] {
	return &BroadcastController[T]{}
}

// NewBroadcastControllerWithHooks creates a broadcast controller with an
// initial hook set.
func NewBroadcastControllerWithHooks[T any](hooks ControllerHooks) *BroadcastController[T] {
	c := NewBroadcastController[T]()
	c.AddLifecycleHooks(hooks)

	return c
}

// AddLifecycleHooks registers a hook set and returns its deregistration function.
//
// Implements DestinationController.
func (c *BroadcastController[T]) AddLifecycleHooks(hooks ControllerHooks) func() {
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

// Implements Observable.
func (c *BroadcastController[T]) Subscribe(destination Observer[T]) Subscription {
	return c.SubscribeWithContext(context.Background(), destination)
}

// Implements Observable.
func (c *BroadcastController[T]) SubscribeWithContext(subscriberCtx context.Context, destination Observer[T]) Subscription {
	subscription := NewSubscriber(destination)

	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		subscription.CompleteWithContext(subscriberCtx)
		return subscription
	}

	index := atomic.AddUint32(&c.observerIndex, 1) - 1
	c.observers.Store(index, subscription)
	c.observerCount++
	first := c.observerCount == 1
	c.mu.Unlock()

	subscription.Add(func() {
		c.mu.Lock()
		if _, present := c.observers.Load(index); present {
			c.observers.Delete(index)
			c.observerCount--
		}
		last := c.observerCount == 0 && !c.closed
		c.mu.Unlock()

		if last {
			c.fireCancel()
		}
	})

	if first {
		c.fireListen()
	}

	return subscription
}

// Implements DestinationController.
func (c *BroadcastController[T]) Add(value T) {
	c.AddWithContext(context.Background(), value)
}

// Implements DestinationController.
func (c *BroadcastController[T]) AddWithContext(ctx context.Context, value T) {
	if c.IsClosed() {
		OnDroppedNotification(ctx, NewNotificationNext(value))
		return
	}

	if !c.HasObserver() {
		OnDroppedNotification(ctx, NewNotificationNext(value))
		return
	}

	c.broadcast(func(observer Subscriber[T]) {
		observer.NextWithContext(ctx, value)
	})
}

// Implements DestinationController.
func (c *BroadcastController[T]) AddError(err error) {
	c.AddErrorWithContext(context.Background(), err)
}

// Implements DestinationController.
func (c *BroadcastController[T]) AddErrorWithContext(ctx context.Context, err error) {
	if c.IsClosed() {
		OnDroppedNotification(ctx, NewNotificationError[T](err))
		return
	}

	if !c.HasObserver() {
		OnDroppedNotification(ctx, NewNotificationError[T](err))
		return
	}

	c.broadcast(func(observer Subscriber[T]) {
		observer.ErrorWithContext(ctx, err)
	})
}

// Implements DestinationController.
func (c *BroadcastController[T]) Close() {
	c.CloseWithContext(context.Background())
}

// Implements DestinationController.
func (c *BroadcastController[T]) CloseWithContext(ctx context.Context) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		OnDroppedNotification(ctx, NewNotificationComplete[T]())
		return
	}

	c.closed = true
	c.mu.Unlock()

	c.broadcast(func(observer Subscriber[T]) {
		observer.CompleteWithContext(ctx)
	})

	c.unsubscribeAll()
}

// Implements DestinationController.
func (c *BroadcastController[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// Stream returns the readable, broadcast side of the controller.
//
// Implements DestinationController.
func (c *BroadcastController[T]) Stream() Observable[T] {
	return c
}

// Implements Observable.
func (c *BroadcastController[T]) IsBroadcast() bool {
	return true
}

// HasObserver returns true when at least one listener is subscribed.
func (c *BroadcastController[T]) HasObserver() (has bool) {
	c.observers.Range(func(key, value any) bool {
		has = true
		return false
	})

	return has
}

// CountObservers returns the number of subscribed listeners.
func (c *BroadcastController[T]) CountObservers() int {
	count := 0

	c.observers.Range(func(key, value any) bool {
		count++
		return true
	})

	return count
}

func (c *BroadcastController[T]) broadcast(fn func(observer Subscriber[T])) {
	c.observers.Range(func(_, observer any) bool {
		fn(observer.(Subscriber[T])) //nolint:errcheck,forcetypeassert
		return true
	})
}

func (c *BroadcastController[T]) unsubscribeAll() {
	c.observers.Range(func(key, _ any) bool {
		c.observers.Delete(key)
		return true
	})

	c.mu.Lock()
	c.observerCount = 0
	c.mu.Unlock()
}

func (c *BroadcastController[T]) snapshotHooks() []*ControllerHooks {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]*ControllerHooks, len(c.hooks))
	copy(snapshot, c.hooks)

	return snapshot
}

func (c *BroadcastController[T]) fireListen() {
	for _, h := range c.snapshotHooks() {
		if h.OnListen != nil {
			h.OnListen()
		}
	}
}

func (c *BroadcastController[T]) fireCancel() {
	for _, h := range c.snapshotHooks() {
		if h.OnCancel != nil {
			h.OnCancel()
		}
	}
}
