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

	"golang.org/x/exp/slices"
)

// MergeStreams combines N sources, in the given order, into one destination
// emitting the latest value of every source as an ordered slice. The first
// emission happens only once every source has emitted at least once; from
// then on, every source event produces a fresh snapshot.
//
// All N sources share a single destination controller: each source gets its
// own transformer whose destination is overridden to the shared controller,
// so listening to the merged stream subscribes all sources, cancelling it
// unsubscribes them all, and pausing it pauses them all.
//
// A source error surfaces as a *MergeSourceError carrying the source's index
// and wrapping the original error; it does not stop the destination. When a
// source completes, its lifecycle hooks are removed from the shared
// controller; the destination closes when the last source has completed —
// whether or not any tuple was ever emitted.
//
// MergeStreams panics ErrMergeStreamsEmptySources when given no sources.
func MergeStreams[T any](sources []Observable[T]) Observable[[]T] {
	if len(sources) == 0 {
		panic(ErrMergeStreamsEmptySources)
	}

	m := &mergeManager[T]{
		ctrl:    NewStreamController[[]T](),
		latest:  make([]T, len(sources)),
		seen:    make([]bool, len(sources)),
		active:  len(sources),
		removes: make([]func(), len(sources)),
	}

	for i, source := range sources {
		i, source := i, source

		transformer := newStreamTransformer(source, StreamLifecycle[T, []T]{
			BindDestination: func(tctx *TransformerContext[T, []T]) DestinationController[[]T] {
				return m.ctrl
			},
			OnData: func(tctx *TransformerContext[T, []T], value T) {
				m.updateLatest(tctx.Context, i, value)
			},
			OnError: func(tctx *TransformerContext[T, []T], err error) {
				tctx.Destination.AddErrorWithContext(tctx.Context, &MergeSourceError{Index: i, Source: source, Err: err})
			},
			OnCancel: func(tctx *TransformerContext[T, []T]) Subscription {
				// Closing the shared destination is the manager's job, after
				// every source has been unsubscribed.
				tctx.UnsubscribeSource()
				return nil
			},
			OnDone: func(tctx *TransformerContext[T, []T]) {
				m.sourceDone(i)
			},
		})

		m.removes[i] = transformer.removeHooks
	}

	// Registered last, so it runs after every source's cancel hook.
	m.ctrl.AddLifecycleHooks(ControllerHooks{
		OnCancel: func() {
			if !m.ctrl.IsClosed() {
				m.ctrl.Close()
			}
		},
	})

	return m.ctrl.Stream()
}

// mergeManager holds the shared state of one MergeStreams call: the shared
// destination, the latest value and seen flag per source (indexed by the
// user-declared order), and the per-source hook removal functions.
type mergeManager[T any] struct {
	ctrl    *StreamController[[]T]
	removes []func()

	mu        sync.Mutex
	latest    []T
	seen      []bool
	seenCount int
	active    int
}

// updateLatest records a source value and, once every source has produced at
// least one value, emits an ordered snapshot of the latest values.
func (m *mergeManager[T]) updateLatest(ctx context.Context, index int, value T) {
	m.mu.Lock()

	m.latest[index] = value

	if !m.seen[index] {
		m.seen[index] = true
		m.seenCount++
	}

	ready := m.seenCount == len(m.seen)

	var snapshot []T
	if ready {
		snapshot = slices.Clone(m.latest)
	}

	m.mu.Unlock()

	if ready {
		m.ctrl.AddWithContext(ctx, snapshot)
	}
}

// sourceDone removes the finished source's hooks from the shared controller
// and closes the destination when it was the last active source.
func (m *mergeManager[T]) sourceDone(index int) {
	m.mu.Lock()
	m.active--
	last := m.active == 0
	remove := m.removes[index]
	m.removes[index] = nil
	m.mu.Unlock()

	if remove != nil {
		remove()
	}

	if last && !m.ctrl.IsClosed() {
		m.ctrl.Close()
	}
}
