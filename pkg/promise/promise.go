/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package promise provides a single-assignment future and a deadline-bounded
// join over many of them.
package promise

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadySettled is returned when a settled promise is resolved or rejected again.
var ErrAlreadySettled = errors.New("promise already settled")

// State is the lifecycle position of a promise.
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Promise is settled exactly once, by Resolve or Reject, from any goroutine.
type Promise[T any] struct {
	mu    sync.RWMutex
	done  chan struct{}
	state State
	value T
	err   error
}

// New returns a pending promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Resolved returns a promise already fulfilled with value.
func Resolved[T any](value T) *Promise[T] {
	p := New[T]()
	_ = p.Resolve(value)

	return p
}

// RejectedWith returns a promise already rejected with err.
func RejectedWith[T any](err error) *Promise[T] {
	p := New[T]()
	_ = p.Reject(err)

	return p
}

// Resolve fulfils the promise.
func (p *Promise[T]) Resolve(value T) error {
	return p.settle(Fulfilled, value, nil)
}

// Reject fails the promise.
func (p *Promise[T]) Reject(err error) error {
	var zero T

	return p.settle(Rejected, zero, err)
}

func (p *Promise[T]) settle(state State, value T, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Pending {
		return ErrAlreadySettled
	}

	p.state = state
	p.value = value
	p.err = err
	close(p.done)

	return nil
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

func (p *Promise[T]) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.state
}

func (p *Promise[T]) IsPending() bool   { return p.State() == Pending }
func (p *Promise[T]) IsFulfilled() bool { return p.State() == Fulfilled }
func (p *Promise[T]) IsRejected() bool  { return p.State() == Rejected }

// Value returns the fulfilled value; ok is false unless the promise is fulfilled.
func (p *Promise[T]) Value() (value T, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.value, p.state == Fulfilled
}

// Err returns the rejection error, if any.
func (p *Promise[T]) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.err
}

// Await blocks until the promise settles or ctx ends.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		p.mu.RLock()
		defer p.mu.RUnlock()

		return p.value, p.err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// WaitAll blocks until every promise has settled, successfully or not, or ctx
// ends. It returns ctx.Err() when ctx ends first; promises settled by then
// keep their results. Nil entries are skipped.
func WaitAll[T any](ctx context.Context, promises ...*Promise[T]) error {
	for _, p := range promises {
		if p == nil {
			continue
		}

		select {
		case <-p.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// PendingOf filters promises down to those not yet settled.
func PendingOf[T any](promises ...*Promise[T]) []*Promise[T] {
	out := make([]*Promise[T], 0, len(promises))

	for _, p := range promises {
		if p != nil && p.IsPending() {
			out = append(out, p)
		}
	}

	return out
}
