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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompleter_firstAttemptWins(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	completer := NewCompleter[int]()
	is.False(completer.IsCompleted())

	is.True(completer.TryResolve(1))
	is.True(completer.IsCompleted())
	is.False(completer.TryResolve(2))
	is.False(completer.TryReject(assert.AnError))

	value, err := completer.Future().Await(context.Background())
	is.NoError(err)
	is.Equal(1, value)
}

func TestCompleter_resolveTwicePanics(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	completer := NewCompleter[int]()
	completer.Resolve(1)

	is.PanicsWithValue(ErrFutureAlreadyCompleted, func() { completer.Resolve(2) })
	is.PanicsWithValue(ErrFutureAlreadyCompleted, func() { completer.Reject(assert.AnError) })
}

func TestFuture_rejection(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	completer := NewCompleter[int]()
	completer.Reject(assert.AnError)

	_, err := completer.Future().Await(context.Background())
	is.ErrorIs(err, assert.AnError)
}

func TestFuture_onCompleteRunsSynchronously(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	completer := NewCompleter[int]()

	var got []int
	completer.Future().OnComplete(func(value int, err error) {
		got = append(got, value)
	})

	is.Empty(got)
	completer.Resolve(5)
	// The callback ran on this goroutine, before Resolve returned.
	is.Equal([]int{5}, got)
}

func TestFuture_onCompleteOnSettledFutureRunsImmediately(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	called := false
	Resolved(1).OnComplete(func(value int, err error) {
		called = true
	})
	is.True(called)

	var gotErr error
	Rejected[int](assert.AnError).OnComplete(func(value int, err error) {
		gotErr = err
	})
	is.ErrorIs(gotErr, assert.AnError)
}

func TestFuture_result(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	completer := NewCompleter[string]()

	_, _, ok := completer.Future().Result()
	is.False(ok)

	completer.Resolve("done")

	value, err, ok := completer.Future().Result()
	is.True(ok)
	is.NoError(err)
	is.Equal("done", value)
}

func TestFuture_awaitHonorsContext(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCompleter[int]().Future().Await(ctx)
	is.ErrorIs(err, context.Canceled)
}

func TestFuture_doneChannel(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	completer := NewCompleter[int]()

	select {
	case <-completer.Future().Done():
		is.Fail("future should be pending")
	default:
	}

	completer.Resolve(1)

	select {
	case <-completer.Future().Done():
	default:
		is.Fail("future should be settled")
	}
}
