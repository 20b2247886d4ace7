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

// Package xerrors backports multi-error joining to go1.18.
package xerrors

import "strings"

// Join returns an error wrapping the given non-nil errors, or nil if every
// argument is nil. The message is the newline-joined list of messages.
func Join(errs ...error) error {
	nonNil := make([]error, 0, len(errs))

	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	if len(nonNil) == 0 {
		return nil
	}

	if len(nonNil) == 1 {
		return nonNil[0]
	}

	return &joinError{errs: nonNil}
}

type joinError struct {
	errs []error
}

func (e *joinError) Error() string {
	messages := make([]string, 0, len(e.errs))

	for _, err := range e.errs {
		messages = append(messages, err.Error())
	}

	return strings.Join(messages, "\n")
}

func (e *joinError) Unwrap() []error {
	return e.errs
}
