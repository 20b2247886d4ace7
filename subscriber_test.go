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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriber_forwardsUntilComplete(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	rec, observer := newRecordingObserver[int]()
	subscriber := NewSubscriber(observer)

	subscriber.Next(1)
	subscriber.Error(assert.AnError)
	subscriber.Next(2)
	is.False(subscriber.IsClosed())

	subscriber.Complete()
	is.True(subscriber.IsClosed())
	is.True(subscriber.IsCompleted())

	is.Equal([]int{1, 2}, rec.values)
	is.Equal([]error{assert.AnError}, rec.errors)
	is.True(rec.completed)
}

func TestSubscriber_dropsAfterUnsubscribe(t *testing.T) {
	// Not parallel: replaces the global dropped-notification hook.
	is := assert.New(t)

	rec, observer := newRecordingObserver[int]()
	subscriber := NewSubscriber(observer)

	subscriber.Unsubscribe()
	is.True(subscriber.IsClosed())

	dropped := 0
	WithDroppedNotification(t, func(ctx context.Context, notification fmt.Stringer) {
		dropped++
	}, func() {
		subscriber.Next(1)
		subscriber.Error(assert.AnError)
		subscriber.Complete()
	})

	is.Equal(3, dropped)
	is.Empty(rec.values)
	is.False(rec.completed)
}

func TestSubscriber_wrappingASubscriberIsIdempotent(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	_, observer := newRecordingObserver[int]()
	subscriber := NewSubscriber(observer)

	is.Same(subscriber, NewSubscriber[int](subscriber))
	is.Same(subscriber, NewUnsafeSubscriber[int](subscriber))
}

func TestSubscriber_invalidConcurrencyModePanics(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	_, observer := newRecordingObserver[int]()

	is.PanicsWithValue(ErrInvalidConcurrencyMode, func() {
		NewSubscriberWithConcurrencyMode(observer, ConcurrencyMode(42))
	})
}

func TestSubscriber_pausePreservesArrivalOrder(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var order []string
	subscriber := NewSubscriber(NewObserver(
		func(value int) { order = append(order, fmt.Sprintf("next:%d", value)) },
		func(err error) { order = append(order, "error") },
		func() { order = append(order, "complete") },
	))

	subscriber.Pause()
	subscriber.Next(1)
	subscriber.Error(assert.AnError)
	subscriber.Next(2)
	subscriber.Complete()
	is.Empty(order)

	subscriber.Resume()
	is.Equal([]string{"next:1", "error", "next:2", "complete"}, order)
	is.True(subscriber.IsCompleted())
}

func TestSubscriber_unsafeModeStillEnforcesTerminalState(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	rec, observer := newRecordingObserver[int]()
	subscriber := NewUnsafeSubscriber(observer)

	subscriber.Next(1)
	subscriber.Complete()
	subscriber.Next(2)

	is.Equal([]int{1}, rec.values)
	is.True(rec.completed)
}

func TestSubscriber_eventuallySafeModeDelivers(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	rec, observer := newRecordingObserver[int]()
	subscriber := NewEventuallySafeSubscriber(observer)

	subscriber.Next(1)
	subscriber.Next(2)
	subscriber.Complete()

	is.Equal([]int{1, 2}, rec.values)
	is.True(rec.completed)
}
