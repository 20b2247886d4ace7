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

// recordedEvents captures everything an observer saw, in order of arrival.
type recordedEvents[T any] struct {
	values    []T
	errors    []error
	completed bool
}

// newRecordingObserver returns a recorder and an observer feeding it.
func newRecordingObserver[T any]() (*recordedEvents[T], Observer[T]) {
	rec := &recordedEvents[T]{}

	observer := NewObserver(
		func(value T) { rec.values = append(rec.values, value) },
		func(err error) { rec.errors = append(rec.errors, err) },
		func() { rec.completed = true },
	)

	return rec, observer
}
