// Package promise provides the default Thenable implementation used by the
// forge and the messenger, together with the Engine factory type that lets
// callers plug in another promise implementation.
//
// A Promise is pending until it is resolved or rejected exactly once. Handlers
// attached with Then run synchronously on settlement, or immediately when the
// promise is already settled. Go callers that prefer blocking can use Await.
package promise

import (
	"context"
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/courier/paradigm"
)

// State is the settlement state of a Promise.
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Executor receives the functions that settle a promise.
type Executor func(resolve, reject func(any))

// Engine builds a Thenable from an executor. It is the seam used by the forge
// to stay independent of any concrete promise implementation.
type Engine func(executor Executor) paradigm.Thenable

// DefaultEngine builds promises of this package.
func DefaultEngine(executor Executor) paradigm.Thenable {
	return New(executor)
}

type handler struct {
	onFulfilled func(any)
	onRejected  func(any)
}

// Promise is a single-assignment asynchronous result.
type Promise struct {
	mu       sync.Mutex
	state    State
	value    any
	handlers []handler
	done     chan struct{}
}

// New creates a promise and runs executor synchronously. A panic inside the
// executor rejects the promise with the recovered value.
func New(executor Executor) *Promise {
	p := newPending()

	func() {
		defer func() {
			if r := recover(); r != nil {
				p.settle(Rejected, r)
			}
		}()
		executor(p.resolve, p.reject)
	}()

	return p
}

// Resolve returns a promise already fulfilled with value.
func Resolve(value any) *Promise {
	p := newPending()
	p.settle(Fulfilled, value)
	return p
}

// Reject returns a promise already rejected with reason.
func Reject(reason any) *Promise {
	p := newPending()
	p.settle(Rejected, reason)
	return p
}

func newPending() *Promise {
	return &Promise{done: make(chan struct{})}
}

func (p *Promise) resolve(value any) { p.settle(Fulfilled, value) }
func (p *Promise) reject(reason any) { p.settle(Rejected, reason) }

// settle transitions a pending promise and runs queued handlers outside the
// lock. Later calls are ignored.
func (p *Promise) settle(state State, value any) {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.value = value
	handlers := p.handlers
	p.handlers = nil
	close(p.done)
	p.mu.Unlock()

	for _, h := range handlers {
		h.run(state, value)
	}
}

// Then registers settlement handlers. Either handler may be nil.
func (p *Promise) Then(onFulfilled, onRejected func(any)) {
	h := handler{onFulfilled: onFulfilled, onRejected: onRejected}

	p.mu.Lock()
	if p.state == Pending {
		p.handlers = append(p.handlers, h)
		p.mu.Unlock()
		return
	}
	state, value := p.state, p.value
	p.mu.Unlock()

	h.run(state, value)
}

func (h handler) run(state State, value any) {
	switch state {
	case Fulfilled:
		if h.onFulfilled != nil {
			h.onFulfilled(value)
		}
	case Rejected:
		if h.onRejected != nil {
			h.onRejected(value)
		}
	}
}

// State returns the current settlement state.
func (p *Promise) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done is closed once the promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the promise settles or ctx is done. A rejection is
// returned as an error; see Reason.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	state, value := p.state, p.value
	p.mu.Unlock()

	if state == Rejected {
		return nil, Reason(value)
	}
	return value, nil
}

// Reason converts a rejection value to an error. Errors are returned as is so
// that errors.Is and errors.As keep working on typed rejections.
func Reason(value any) error {
	if err, ok := value.(error); ok {
		return err
	}
	return &RejectionError{Value: value}
}

// RejectionError wraps a rejection value that is not an error.
type RejectionError struct {
	Value any
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("promise rejected: %v", e.Value)
}
