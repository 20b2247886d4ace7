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
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Round-trip: the identity lifecycle reproduces the source exactly.
func TestTransformStream_identityRoundTrip(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	out := TransformStream(Just(1, 2, 3), IdentityLifecycle[int]())

	values, err := Collect(out)
	is.NoError(err)
	is.Equal([]int{1, 2, 3}, values)
}

func TestTransformStream_mapsElementType(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	out := TransformStream(Just(1, 2, 3), StreamLifecycle[int, string]{
		OnData: func(tctx *TransformerContext[int, string], value int) {
			tctx.Destination.AddWithContext(tctx.Context, strconv.Itoa(value))
		},
	})

	values, err := Collect(out)
	is.NoError(err)
	is.Equal([]string{"1", "2", "3"}, values)
}

func TestTransformStream_missingOnDataPanics(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	is.PanicsWithValue(ErrMissingOnData, func() {
		TransformStream(Just(1), StreamLifecycle[int, int]{})
	})
}

func TestTransformStream_forwardsErrorsWithoutStopping(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	source := NewStreamController[int]()
	out := TransformStream(source.Stream(), IdentityLifecycle[int]())

	rec, observer := newRecordingObserver[int]()
	_ = out.Subscribe(observer)

	source.Add(1)
	source.AddError(assert.AnError)
	source.Add(2)
	source.Close()

	is.Equal([]int{1, 2}, rec.values)
	is.Equal([]error{assert.AnError}, rec.errors)
	is.True(rec.completed)
}

// A duplicate-listen fault raised while subscribing the source surfaces
// synchronously from the destination's Subscribe, as if the caller had
// listened to the source directly.
func TestTransformStream_duplicateSourceListenSurfacesSynchronously(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	source := NewStreamController[int]()
	_ = source.Stream().Subscribe(NoopObserver[int]())

	out := TransformStream(source.Stream(), IdentityLifecycle[int]())

	is.PanicsWithValue(ErrDuplicateListener, func() {
		out.Subscribe(NoopObserver[int]())
	})
}

func TestTransformStream_destinationIsSingleSubscription(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	out := TransformStream(NewStreamController[int]().Stream(), IdentityLifecycle[int]())
	is.False(out.IsBroadcast())

	_ = out.Subscribe(NoopObserver[int]())
	is.PanicsWithValue(ErrDuplicateListener, func() {
		out.Subscribe(NoopObserver[int]())
	})
}

func TestTransformStream_broadcastSourceGetsBroadcastDestination(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	source := NewBroadcastController[int]()
	out := TransformStream(source.Stream(), IdentityLifecycle[int]())
	is.True(out.IsBroadcast())

	rec1, observer1 := newRecordingObserver[int]()
	sub1 := out.Subscribe(observer1)

	source.Add(1)
	is.Equal([]int{1}, rec1.values)

	// Cancelling a broadcast listener leaves the destination open.
	sub1.Unsubscribe()

	rec2, observer2 := newRecordingObserver[int]()
	_ = out.Subscribe(observer2)

	source.Add(2)
	is.Equal([]int{2}, rec2.values)
	is.Equal([]int{1}, rec1.values)
}

func TestTransformStream_cancelForwardsToSource(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cancelled := 0
	source := NewStreamControllerWithHooks[int](ControllerHooks{
		OnCancel: func() { cancelled++ },
	})

	out := TransformStream(source.Stream(), IdentityLifecycle[int]())
	sub := out.Subscribe(NoopObserver[int]())

	sub.Unsubscribe()
	is.Equal(1, cancelled)
}

func TestTransformStream_pauseForwardsToSource(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	paused := 0
	resumed := 0
	source := NewStreamControllerWithHooks[int](ControllerHooks{
		OnPause:  func() { paused++ },
		OnResume: func() { resumed++ },
	})

	out := TransformStream(source.Stream(), IdentityLifecycle[int]())
	rec, observer := newRecordingObserver[int]()
	sub := out.Subscribe(observer)

	sub.Pause()
	is.Equal(1, paused)

	source.Add(1)
	is.Empty(rec.values)

	sub.Resume()
	is.Equal(1, resumed)
	is.Equal([]int{1}, rec.values)
}

func TestTransformStream_customHooksOverrideDefaults(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var doneSeen bool
	out := TransformStream(Just(1, 2), StreamLifecycle[int, int]{
		OnData: func(tctx *TransformerContext[int, int], value int) {
			tctx.Destination.AddWithContext(tctx.Context, value*10)
		},
		OnDone: func(tctx *TransformerContext[int, int]) {
			doneSeen = true
			tctx.Destination.AddWithContext(tctx.Context, 999)
			tctx.CloseDestination()
		},
	})

	values, err := Collect(out)
	is.NoError(err)
	is.True(doneSeen)
	is.Equal([]int{10, 20, 999}, values)
}

func TestCancelOnError_stopsOnFirstError(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cancelled := 0
	source := NewStreamControllerWithHooks[int](ControllerHooks{
		OnCancel: func() { cancelled++ },
	})

	out := CancelOnError[int]()(source.Stream())
	rec, observer := newRecordingObserver[int]()
	_ = out.Subscribe(observer)

	source.Add(1)
	source.AddError(assert.AnError)
	source.Add(2)

	is.Equal([]int{1}, rec.values)
	is.Equal([]error{assert.AnError}, rec.errors)
	is.True(rec.completed)
	is.Equal(1, cancelled)
}
