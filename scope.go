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
	"sync"
	"sync/atomic"
)

// Scope owns a set of cancellable task handles and an ordered list of child
// scopes. Cancelling the scope is a synchronous, one-shot fan-out: every
// handle's cancel action runs before CancelAll returns, then every child is
// cancelled in insertion order. Once cancelled, the handle set is empty and
// every further bind panics ErrScopeAlreadyCancelled.
//
// Ownership is one-way: a scope reaches its children, children hold no
// reference back to their parent. The only back-reference a handle carries is
// the non-owning scope stamp inside the CancellationError it produces.
type Scope struct {
	mu        sync.Mutex
	cancelled bool
	handles   []*taskHandle
	children  []*Scope
}

// taskHandle is one unit of cancellable work registered on a scope. Its
// cancel action must not block: it runs on the CancelAll caller's stack.
type taskHandle struct {
	cancel func()
}

// NewScope creates a scope without a parent.
func NewScope() *Scope {
	return &Scope{}
}

// NewChildScope creates a scope registered as a child of parent: cancelling
// the parent cancels the child, never the other way around. Creating a child
// of an already-cancelled scope panics ErrScopeAlreadyCancelled.
func NewChildScope(parent *Scope) *Scope {
	child := &Scope{}

	parent.mu.Lock()
	defer parent.mu.Unlock()

	if parent.cancelled {
		panic(ErrScopeAlreadyCancelled)
	}

	parent.children = append(parent.children, child)

	return child
}

// IsCancelled returns true once CancelAll has been invoked. The flag is
// observable synchronously: it reads true from the statement following the
// CancelAll call.
func (s *Scope) IsCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelled
}

// CancelAll cancels every task handle currently bound to the scope, then
// every child scope in insertion order. It is synchronous — when it returns,
// IsCancelled reads true, every bound computation rejects on await, and
// listeners of bound sequences have received their terminal cancellation
// error — and idempotent: a second call does nothing.
//
// The handle set is snapshotted at entry: handles registered from within a
// cancel callback are not visited (binding during the cancel pass panics, as
// the scope is already marked cancelled). A panic inside one cancel action is
// routed to the unhandled-error handler and does not stop the fan-out.
func (s *Scope) CancelAll() {
	s.mu.Lock()

	if s.cancelled {
		s.mu.Unlock()
		return
	}

	s.cancelled = true
	handles := s.handles
	children := s.children
	s.handles = nil
	s.mu.Unlock()

	for _, handle := range handles {
		recoverUnhandledError(handle.cancel)
	}

	for _, child := range children {
		child.CancelAll()
	}
}

// register binds a cancel action to the scope and returns its handle. It
// panics ErrScopeAlreadyCancelled when the scope is cancelled — including
// reentrantly, from within a cancel callback.
func (s *Scope) register(cancel func()) *taskHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled {
		panic(ErrScopeAlreadyCancelled)
	}

	handle := &taskHandle{cancel: cancel}
	s.handles = append(s.handles, handle)

	return handle
}

// deregister forgets a handle: completed work does not need cancelling. It is
// a no-op once the scope is cancelled (the set is already empty).
func (s *Scope) deregister(handle *taskHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, h := range s.handles {
		if h == handle {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return
		}
	}
}

// CancelListener is the handle returned by AddCancelListener. The callback it
// wraps runs exactly once across InvokeEarly and CancelAll.
type CancelListener struct {
	scope    *Scope
	handle   *taskHandle
	fired    int32
	callback func()
}

// AddCancelListener registers a callback invoked when the scope is cancelled.
// The returned listener allows running the callback early instead.
func (s *Scope) AddCancelListener(callback func()) *CancelListener {
	listener := &CancelListener{
		scope:    s,
		callback: callback,
	}

	listener.handle = s.register(listener.fire)

	return listener
}

// InvokeEarly runs the callback immediately — unless it already ran — and
// deregisters the listener from its scope. It is a no-op when the scope has
// already been cancelled.
func (l *CancelListener) InvokeEarly() {
	if l.scope.IsCancelled() {
		return
	}

	l.scope.deregister(l.handle)
	l.fire()
}

func (l *CancelListener) fire() {
	if atomic.CompareAndSwapInt32(&l.fired, 0, 1) {
		l.callback()
	}
}
