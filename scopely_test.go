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
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestKind_String(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	is.Equal("Next", KindNext.String())
	is.Equal("Error", KindError.String())
	is.Equal("Complete", KindComplete.String())
	is.Panics(func() { _ = Kind(42).String() })
}

func TestNotification_String(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	is.Equal("Next(1)", NewNotificationNext(1).String())
	is.Equal("Error(boom)", NewNotificationError[int](errors.New("boom")).String())
	is.Equal("Error(nil)", Notification[int]{Kind: KindError}.String())
	is.Equal("Complete()", NewNotificationComplete[int]().String())
}

func TestProcessNotification_errorIsNotTerminal(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	var seen []string

	onNext := func(value int) { seen = append(seen, "next") }
	onError := func(err error) { seen = append(seen, "error") }
	onComplete := func() { seen = append(seen, "complete") }

	is.True(processNotification(NewNotificationNext(1), onNext, onError, onComplete))
	is.True(processNotification(NewNotificationError[int](assert.AnError), onNext, onError, onComplete))
	is.False(processNotification(NewNotificationComplete[int](), onNext, onError, onComplete))
	is.Equal([]string{"next", "error", "complete"}, seen)
}

func TestSetOnUnhandledError_nilRestoresDefault(t *testing.T) {
	is := assert.New(t)

	called := 0
	SetOnUnhandledError(func(ctx context.Context, err error) { called++ })
	OnUnhandledError(context.Background(), assert.AnError)
	is.Equal(1, called)

	SetOnUnhandledError(nil)
	OnUnhandledError(context.Background(), assert.AnError)
	is.Equal(1, called)
}

func TestDefaultHandlers_doNotPanic(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	is.NotPanics(func() {
		DefaultOnUnhandledError(context.Background(), assert.AnError)
		DefaultOnUnhandledError(context.Background(), nil)
		DefaultOnDroppedNotification(context.Background(), NewNotificationNext(1))
		IgnoreOnUnhandledError(context.Background(), assert.AnError)
		IgnoreOnDroppedNotification(context.Background(), NewNotificationComplete[int]())
	})
}
