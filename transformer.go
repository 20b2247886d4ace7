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
)

// TransformerContext is the state a lifecycle hook operates on: the source
// sequence, the current source subscription (nil before the destination is
// listened to, and replaced by the return values of OnListen/OnCancel), and
// the destination controller. The same record is handed to every hook of one
// transformer; Context carries the context of the event being processed.
type TransformerContext[S, D any] struct {
	Context      context.Context
	Source       Observable[S]
	Subscription Subscription
	Destination  DestinationController[D]
}

// UnsubscribeSource cancels the current source subscription, if any.
func (tctx *TransformerContext[S, D]) UnsubscribeSource() {
	if tctx.Subscription != nil {
		tctx.Subscription.Unsubscribe()
	}
}

// CloseDestination closes the destination if it is still open.
func (tctx *TransformerContext[S, D]) CloseDestination() {
	if !tctx.Destination.IsClosed() {
		tctx.Destination.CloseWithContext(tctx.Context)
	}
}

// ForwardError pushes a source error through the destination unmodified.
func (tctx *TransformerContext[S, D]) ForwardError(err error) {
	tctx.Destination.AddErrorWithContext(tctx.Context, err)
}

// StreamLifecycle is the override surface of a stream transformer. Every
// field except OnData is optional; a nil field takes the default behavior,
// which together amount to a faithful passthrough of the source: data (via
// the mandatory OnData), errors with their original values, the done signal,
// pause/resume plumbing, single-subscription enforcement, and no
// cancel-on-error at the source subscription (listeners wanting that policy
// apply the CancelOnError operator to the transformed stream).
type StreamLifecycle[S, D any] struct {
	// BindDestination chooses the destination controller. The default picks
	// the flavor by source kind: a broadcast source gets a
	// BroadcastController (no pause plumbing), a single-subscription source
	// gets a StreamController with pause/resume. Override it to supply an
	// external controller — this is how several transformers share one
	// destination (see MergeStreams).
	BindDestination func(tctx *TransformerContext[S, D]) DestinationController[D]

	// OnListen fires when the destination is listened to. The default
	// subscribes to the source, dispatching data/error/done to the OnData,
	// OnError and OnDone hooks. Its return value becomes the current source
	// subscription.
	OnListen func(tctx *TransformerContext[S, D]) Subscription

	// OnCancel fires when the destination subscription is disposed (explicit
	// cancel or delivery of done). The default cancels the source
	// subscription and, only when the source is single-subscription, closes
	// the destination — a broadcast destination must remain open to accept
	// future listeners. Its return value becomes the new current source
	// subscription.
	OnCancel func(tctx *TransformerContext[S, D]) Subscription

	// OnPause and OnResume fire on pause-state transitions of the
	// destination subscription. The defaults forward to the source
	// subscription. Broadcast destinations never fire them.
	OnPause  func(tctx *TransformerContext[S, D])
	OnResume func(tctx *TransformerContext[S, D])

	// OnData receives each source value. It is the only mandatory hook:
	// there is no possible default because the destination element type
	// differs from the source element type. TransformStream panics
	// ErrMissingOnData when it is nil.
	OnData func(tctx *TransformerContext[S, D], value S)

	// OnError receives each source error. The default forwards it through
	// the destination unmodified. Source errors are not terminal.
	OnError func(tctx *TransformerContext[S, D], err error)

	// OnDone fires when the source completes. The default closes the
	// destination if it is still open.
	OnDone func(tctx *TransformerContext[S, D])
}

// TransformStream wraps a source sequence with the given lifecycle and
// returns the destination sequence. With only OnData set, the destination
// faithfully reproduces the source.
//
// Faults raised while subscribing to the source — notably
// ErrDuplicateListener on an already-listened single-subscription source —
// propagate synchronously out of the destination's Subscribe call, exactly as
// if the caller had listened to the source directly.
func TransformStream[S, D any](source Observable[S], lifecycle StreamLifecycle[S, D]) Observable[D] {
	return newStreamTransformer(source, lifecycle).dest.Stream()
}

type streamTransformer[S, D any] struct {
	lifecycle StreamLifecycle[S, D]
	tctx      *TransformerContext[S, D]
	dest      DestinationController[D]

	// removeHooks deregisters this transformer's hook set from the
	// destination controller. Used by the merge combiner when a source ends.
	removeHooks func()
}

func newStreamTransformer[S, D any](source Observable[S], lifecycle StreamLifecycle[S, D]) *streamTransformer[S, D] {
	if lifecycle.OnData == nil {
		panic(ErrMissingOnData)
	}

	t := &streamTransformer[S, D]{
		lifecycle: lifecycle,
		tctx: &TransformerContext[S, D]{
			Context: context.Background(),
			Source:  source,
		},
	}

	if lifecycle.BindDestination != nil {
		t.dest = lifecycle.BindDestination(t.tctx)
	} else if source.IsBroadcast() {
		t.dest = NewBroadcastController[D]()
	} else {
		t.dest = NewStreamController[D]()
	}

	t.tctx.Destination = t.dest

	t.removeHooks = t.dest.AddLifecycleHooks(ControllerHooks{
		OnListen: t.onListen,
		OnCancel: t.onCancel,
		OnPause:  t.onPause,
		OnResume: t.onResume,
	})

	return t
}

func (t *streamTransformer[S, D]) onListen() {
	if t.lifecycle.OnListen != nil {
		t.tctx.Subscription = t.lifecycle.OnListen(t.tctx)
		return
	}

	t.tctx.Subscription = t.subscribeSource()
}

// subscribeSource is the default OnListen body: subscribe to the source with
// cancel-on-error off, dispatching every event to the data/error/done hooks.
func (t *streamTransformer[S, D]) subscribeSource() Subscription {
	observer := NewObserverWithContext(
		func(ctx context.Context, value S) {
			t.tctx.Context = ctx
			t.lifecycle.OnData(t.tctx, value)
		},
		func(ctx context.Context, err error) {
			t.tctx.Context = ctx
			t.onError(err)
		},
		func(ctx context.Context) {
			t.tctx.Context = ctx
			t.onDone()
		},
	)

	return t.tctx.Source.SubscribeWithContext(t.tctx.Context, observer)
}

func (t *streamTransformer[S, D]) onError(err error) {
	if t.lifecycle.OnError != nil {
		t.lifecycle.OnError(t.tctx, err)
		return
	}

	t.tctx.ForwardError(err)
}

func (t *streamTransformer[S, D]) onDone() {
	if t.lifecycle.OnDone != nil {
		t.lifecycle.OnDone(t.tctx)
		return
	}

	t.tctx.CloseDestination()
}

func (t *streamTransformer[S, D]) onCancel() {
	if t.lifecycle.OnCancel != nil {
		t.tctx.Subscription = t.lifecycle.OnCancel(t.tctx)
		return
	}

	t.tctx.UnsubscribeSource()
	t.tctx.Subscription = nil

	if !t.tctx.Source.IsBroadcast() {
		t.tctx.CloseDestination()
	}
}

func (t *streamTransformer[S, D]) onPause() {
	if t.lifecycle.OnPause != nil {
		t.lifecycle.OnPause(t.tctx)
		return
	}

	if t.tctx.Subscription != nil {
		t.tctx.Subscription.Pause()
	}
}

func (t *streamTransformer[S, D]) onResume() {
	if t.lifecycle.OnResume != nil {
		t.lifecycle.OnResume(t.tctx)
		return
	}

	if t.tctx.Subscription != nil {
		t.tctx.Subscription.Resume()
	}
}

// IdentityLifecycle returns a lifecycle whose hooks are all defaults: the
// transformed stream reproduces the source exactly.
func IdentityLifecycle[T any]() StreamLifecycle[T, T] {
	return StreamLifecycle[T, T]{
		OnData: func(tctx *TransformerContext[T, T], value T) {
			tctx.Destination.AddWithContext(tctx.Context, value)
		},
	}
}

// CancelOnError turns the non-terminal error semantics of a sequence into
// stop-on-first-error: the first error is forwarded, then the source
// subscription is cancelled and the destination closed. This is the
// destination-side rendition of the usual cancel-on-error listen flag; the
// source subscription itself is always made with cancel-on-error off.
func CancelOnError[T any]() func(Observable[T]) Observable[T] {
	return func(source Observable[T]) Observable[T] {
		return TransformStream(source, StreamLifecycle[T, T]{
			OnData: func(tctx *TransformerContext[T, T], value T) {
				tctx.Destination.AddWithContext(tctx.Context, value)
			},
			OnError: func(tctx *TransformerContext[T, T], err error) {
				tctx.ForwardError(err)
				tctx.UnsubscribeSource()
				tctx.CloseDestination()
			},
		})
	}
}
