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

// AsFutures turns a sequence into a sequence of per-event completions: every
// value becomes an already-resolved Future, every error an already-rejected
// one, and the done signal closes the destination. This lets a consumer
// handle each event's error locally — around a single Await — instead of
// through an error channel that interrupts the iteration.
//
// The single-subscription contract of the source is preserved: listening to
// the destination twice panics ErrDuplicateListener synchronously.
func AsFutures[T any](source Observable[T]) Observable[*Future[T]] {
	return TransformStream(source, StreamLifecycle[T, *Future[T]]{
		OnData: func(tctx *TransformerContext[T, *Future[T]], value T) {
			tctx.Destination.AddWithContext(tctx.Context, Resolved(value))
		},
		OnError: func(tctx *TransformerContext[T, *Future[T]], err error) {
			tctx.Destination.AddWithContext(tctx.Context, Rejected[T](err))
		},
	})
}
