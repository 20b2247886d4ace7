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
	"sync"
	"testing"
)

// droppedNotificationMu serializes test-time overrides of the package-level
// dropped-notification hook so tests do not concurrently replace the global
// handler. Tests that need to temporarily replace the hook should use
// WithDroppedNotification.
var droppedNotificationMu sync.Mutex

// WithDroppedNotification temporarily sets the dropped-notification handler
// to the provided one while executing fn. The previous handler is restored
// when fn returns, even if fn panics.
func WithDroppedNotification(t *testing.T, handler func(ctx context.Context, notification fmt.Stringer), fn func()) {
	t.Helper()

	droppedNotificationMu.Lock()
	prev := GetOnDroppedNotification()
	SetOnDroppedNotification(handler)

	defer func() {
		SetOnDroppedNotification(prev)
		droppedNotificationMu.Unlock()
	}()

	fn()
}
