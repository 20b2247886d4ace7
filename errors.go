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
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Programmer faults. These are raised via panic: they indicate API misuse,
// not runtime conditions, and are never absorbed by the cancellation filter.
var (
	// ErrScopeAlreadyCancelled is raised when binding work to — or creating a
	// child of — a scope whose CancelAll has already returned.
	ErrScopeAlreadyCancelled = errors.New("scope already cancelled: cannot bind new work")

	// ErrDuplicateListener is raised when subscribing a second time to a
	// single-subscription stream, including after the first subscription was
	// cancelled.
	ErrDuplicateListener = errors.New("single-subscription stream has already been listened to")

	// ErrMergeStreamsEmptySources is raised by MergeStreams when given no sources.
	ErrMergeStreamsEmptySources = errors.New("MergeStreams requires at least one source")

	// ErrMissingOnData is raised by TransformStream when the lifecycle has no
	// OnData hook. There is no possible default: the destination element type
	// differs from the source element type.
	ErrMissingOnData = errors.New("stream lifecycle requires an OnData hook")

	// ErrInvalidConcurrencyMode is raised when an unknown ConcurrencyMode is used.
	ErrInvalidConcurrencyMode = errors.New("invalid concurrency mode")
)

// CancellationError is the control signal delivered to awaiters of cancelled
// bound computations and to listeners of cancelled bound sequences. It is
// stamped with the scope whose CancelAll produced it; the stamp is a
// non-owning reference used only to identify provenance. It is intended to be
// absorbed by CatchCancellations / CatchAllCancellations, not shown to users.
type CancellationError struct {
	scope *Scope
}

func newCancellationError(scope *Scope) *CancellationError {
	return &CancellationError{scope: scope}
}

// Scope returns the scope whose cancellation produced this signal.
func (e *CancellationError) Scope() *Scope {
	return e.scope
}

func (e *CancellationError) Error() string {
	return "task cancelled by scope"
}

// Is reports scope-identity equality: two CancellationErrors match when they
// originate from the same scope.
func (e *CancellationError) Is(target error) bool {
	t, ok := target.(*CancellationError)
	return ok && t.scope == e.scope
}

// MergeSourceError wraps an error emitted by one of the sources of a merge
// combiner, recording which source produced it. The original error is
// preserved and reachable through Unwrap.
type MergeSourceError struct {
	// Index is the position of the failing source in the user-declared order.
	Index int
	// Source is the failing source sequence, typed Observable[T].
	Source any
	Err    error
}

func (e *MergeSourceError) Error() string {
	return fmt.Sprintf("merge source %d: %s", e.Index, e.Err.Error())
}

func (e *MergeSourceError) Unwrap() error {
	return e.Err
}

// observerError wraps a panic recovered from an observer callback.
type observerError struct {
	cause error
}

func newObserverError(cause error) error {
	return &observerError{cause: cause}
}

func (e *observerError) Error() string {
	return "observer callback panicked: " + e.cause.Error()
}

func (e *observerError) Unwrap() error {
	return e.cause
}

// unsubscriptionError wraps a panic recovered from a teardown finalizer.
type unsubscriptionError struct {
	cause error
}

func newUnsubscriptionError(cause error) error {
	return &unsubscriptionError{cause: cause}
}

func (e *unsubscriptionError) Error() string {
	return "teardown panicked: " + e.cause.Error()
}

func (e *unsubscriptionError) Unwrap() error {
	return e.cause
}

// observableError wraps a panic recovered from an Observable's subscribe function.
type observableError struct {
	cause error
}

func newObservableError(cause error) error {
	return &observableError{cause: cause}
}

func (e *observableError) Error() string {
	return "observable subscribe panicked: " + e.cause.Error()
}

func (e *observableError) Unwrap() error {
	return e.cause
}

// recoverValueToError normalizes a recovered panic value into an error.
func recoverValueToError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}

	return fmt.Errorf("%v", v)
}

// recoverUnhandledError runs fn and routes any panic to the unhandled-error
// handler instead of crashing the goroutine.
func recoverUnhandledError(fn func()) {
	lo.TryCatchWithErrorValue(
		func() error {
			fn()
			return nil
		},
		func(e any) {
			OnUnhandledError(context.Background(), recoverValueToError(e))
		},
	)
}
