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
	"errors"

	"github.com/samber/lo"
)

// CatchCancellations runs the block and absorbs cancellation signals
// originating from this scope: whether returned as an error or raised as a
// panic, a CancellationError stamped with this scope makes the call return
// nil. Everything else propagates untouched — foreign-scope cancellations,
// ordinary errors, and programmer faults such as ErrScopeAlreadyCancelled or
// ErrDuplicateListener, which are never absorbed.
func (s *Scope) CatchCancellations(block func() error) error {
	return CatchAllCancellations(block, func(err *CancellationError) bool {
		return err.Scope() == s
	})
}

// CatchAllCancellations runs the block and absorbs cancellation signals
// matching the predicate, defaulting to every cancellation regardless of its
// scope. The block is the single join point all results flow through:
//
//   - block returns nil, or a matching CancellationError, or panics a
//     matching CancellationError — the call returns nil;
//   - block returns any other error — that error is returned unchanged;
//   - block panics anything else — the panic is re-raised, keeping the
//     semantics identical to running the block with no filter installed.
func CatchAllCancellations(block func() error, predicate ...func(*CancellationError) bool) error {
	accept := func(*CancellationError) bool { return true }
	if len(predicate) > 0 && predicate[0] != nil {
		accept = predicate[0]
	}

	var blockErr error
	var panicValue any
	panicked := false

	lo.TryCatchWithErrorValue(
		func() error {
			blockErr = block()
			return nil
		},
		func(e any) {
			panicked = true
			panicValue = e
		},
	)

	if panicked {
		if cancellation, ok := asCancellation(panicValue); ok && accept(cancellation) {
			return nil
		}

		panic(panicValue)
	}

	if blockErr == nil {
		return nil
	}

	if cancellation, ok := asCancellationError(blockErr); ok && accept(cancellation) {
		return nil
	}

	return blockErr
}

func asCancellation(v any) (*CancellationError, bool) {
	err, ok := v.(error)
	if !ok {
		return nil, false
	}

	return asCancellationError(err)
}

func asCancellationError(err error) (*CancellationError, bool) {
	var cancellation *CancellationError
	if errors.As(err, &cancellation) {
		return cancellation, true
	}

	return nil, false
}
