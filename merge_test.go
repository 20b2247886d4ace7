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
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestMergeStreams_emptySourcesPanics(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	is.PanicsWithValue(ErrMergeStreamsEmptySources, func() {
		MergeStreams[int](nil)
	})
	is.PanicsWithValue(ErrMergeStreamsEmptySources, func() {
		MergeStreams([]Observable[int]{})
	})
}

func TestMergeStreams_emitsOnlyOnceEverySourceEmitted(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	a := NewStreamController[int]()
	b := NewStreamController[int]()
	c := NewStreamController[int]()

	out := MergeStreams([]Observable[int]{a.Stream(), b.Stream(), c.Stream()})
	rec, observer := newRecordingObserver[[]int]()
	_ = out.Subscribe(observer)

	a.Add(1)
	a.Add(2)
	b.Add(10)
	is.Empty(rec.values)

	c.Add(100)
	is.Equal([][]int{{2, 10, 100}}, rec.values)

	b.Add(11)
	is.Equal([][]int{{2, 10, 100}, {2, 11, 100}}, rec.values)
}

// Merge two streams, interleaved A1,B21,A2,B22,A3,B23: emissions are the
// latest-value pairs in declaration order.
func TestMergeStreams2_latestValuePairs(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	a := NewStreamController[int]()
	b := NewStreamController[int]()

	out := MergeStreams2(a.Stream(), b.Stream())
	rec, observer := newRecordingObserver[lo.Tuple2[int, int]]()
	_ = out.Subscribe(observer)

	a.Add(1)
	b.Add(21)
	a.Add(2)
	b.Add(22)
	a.Add(3)
	b.Add(23)

	is.Equal([]lo.Tuple2[int, int]{
		lo.T2(1, 21),
		lo.T2(2, 21),
		lo.T2(2, 22),
		lo.T2(3, 22),
		lo.T2(3, 23),
	}, rec.values)

	a.Close()
	b.Close()
	is.True(rec.completed)
}

func TestMergeStreams2_mixedTypes(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	a := NewStreamController[int]()
	b := NewStreamController[string]()

	out := MergeStreams2(a.Stream(), b.Stream())
	rec, observer := newRecordingObserver[lo.Tuple2[int, string]]()
	_ = out.Subscribe(observer)

	a.Add(1)
	b.Add("x")

	is.Equal([]lo.Tuple2[int, string]{lo.T2(1, "x")}, rec.values)
}

func TestMergeStreams3_declarationOrder(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	a := NewStreamController[int]()
	b := NewStreamController[string]()
	c := NewStreamController[bool]()

	out := MergeStreams3(a.Stream(), b.Stream(), c.Stream())
	rec, observer := newRecordingObserver[lo.Tuple3[int, string, bool]]()
	_ = out.Subscribe(observer)

	c.Add(true)
	b.Add("mid")
	a.Add(4)

	is.Equal([]lo.Tuple3[int, string, bool]{lo.T3(4, "mid", true)}, rec.values)
}

func TestMergeStreams_sourceErrorIsWrappedWithIndex(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	a := NewStreamController[int]()
	b := NewStreamController[int]()

	out := MergeStreams([]Observable[int]{a.Stream(), b.Stream()})
	rec, observer := newRecordingObserver[[]int]()
	_ = out.Subscribe(observer)

	b.AddError(assert.AnError)

	is.Len(rec.errors, 1)

	var sourceErr *MergeSourceError
	is.ErrorAs(rec.errors[0], &sourceErr)
	is.Equal(1, sourceErr.Index)
	is.Same(b.Stream(), sourceErr.Source)
	is.ErrorIs(rec.errors[0], assert.AnError)

	// The destination did not stop: both sources can still emit.
	a.Add(1)
	b.Add(2)
	is.Equal([][]int{{1, 2}}, rec.values)
	is.False(rec.completed)
}

func TestMergeStreams_closesWhenLastSourceCompletes(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	a := NewStreamController[int]()
	b := NewStreamController[int]()

	out := MergeStreams([]Observable[int]{a.Stream(), b.Stream()})
	rec, observer := newRecordingObserver[[]int]()
	_ = out.Subscribe(observer)

	a.Add(1)
	a.Close()
	is.False(rec.completed)

	b.Add(2)
	is.Equal([][]int{{1, 2}}, rec.values)

	b.Close()
	is.True(rec.completed)
}

// A source that completes without ever emitting: no tuple can form, and the
// destination still closes once the last active source completes.
func TestMergeStreams_zeroEmissionSourceStillCloses(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	a := NewStreamController[int]()
	b := NewStreamController[int]()

	out := MergeStreams([]Observable[int]{a.Stream(), b.Stream()})
	rec, observer := newRecordingObserver[[]int]()
	_ = out.Subscribe(observer)

	a.Close()
	b.Add(1)
	b.Close()

	is.Empty(rec.values)
	is.True(rec.completed)
}

func TestMergeStreams_cancelUnsubscribesEverySource(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	cancelledA := 0
	cancelledB := 0
	a := NewStreamControllerWithHooks[int](ControllerHooks{OnCancel: func() { cancelledA++ }})
	b := NewStreamControllerWithHooks[int](ControllerHooks{OnCancel: func() { cancelledB++ }})

	out := MergeStreams([]Observable[int]{a.Stream(), b.Stream()})
	rec, observer := newRecordingObserver[[]int]()
	sub := out.Subscribe(observer)

	a.Add(1)
	sub.Unsubscribe()

	is.Equal(1, cancelledA)
	is.Equal(1, cancelledB)

	a.Add(2)
	b.Add(3)
	is.Empty(rec.values)
}

func TestMergeStreams_pauseReachesEverySource(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	pausedA := 0
	pausedB := 0
	a := NewStreamControllerWithHooks[int](ControllerHooks{OnPause: func() { pausedA++ }})
	b := NewStreamControllerWithHooks[int](ControllerHooks{OnPause: func() { pausedB++ }})

	out := MergeStreams([]Observable[int]{a.Stream(), b.Stream()})
	sub := out.Subscribe(NoopObserver[[]int]())

	sub.Pause()
	is.Equal(1, pausedA)
	is.Equal(1, pausedB)

	sub.Resume()
}

func TestMergeStreams9_arity(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	controllers := make([]*StreamController[int], 9)
	for i := range controllers {
		controllers[i] = NewStreamController[int]()
	}

	out := MergeStreams9(
		controllers[0].Stream(), controllers[1].Stream(), controllers[2].Stream(),
		controllers[3].Stream(), controllers[4].Stream(), controllers[5].Stream(),
		controllers[6].Stream(), controllers[7].Stream(), controllers[8].Stream(),
	)

	rec, observer := newRecordingObserver[lo.Tuple9[int, int, int, int, int, int, int, int, int]]()
	_ = out.Subscribe(observer)

	for i, ctrl := range controllers {
		ctrl.Add(i)
	}

	is.Equal([]lo.Tuple9[int, int, int, int, int, int, int, int, int]{
		lo.T9(0, 1, 2, 3, 4, 5, 6, 7, 8),
	}, rec.values)
}
