// Package paradigm defines the asynchronous calling conventions understood by
// the forge and the argument signature extraction for each of them.
package paradigm

import "fmt"

// Paradigm names an asynchronous calling convention.
type Paradigm string

const (
	// Classical functions take (callback, errback) as their last two arguments.
	Classical Paradigm = "classical"
	// Baroque functions take (errback, callback) as their last two arguments.
	Baroque Paradigm = "baroque"
	// Modern functions take a single error-first callback as last argument.
	Modern Paradigm = "modern"
	// Promise functions take no callback and return a Thenable.
	Promise Paradigm = "promise"
)

var all = []Paradigm{Classical, Baroque, Modern, Promise}

// All returns the supported paradigms in declaration order.
func All() []Paradigm {
	out := make([]Paradigm, len(all))
	copy(out, all)
	return out
}

// Valid reports whether p is one of the supported paradigms.
func (p Paradigm) Valid() bool {
	switch p {
	case Classical, Baroque, Modern, Promise:
		return true
	}
	return false
}

func (p Paradigm) String() string {
	return string(p)
}

// Parse resolves a paradigm name. Unknown names never fall back to a default.
func Parse(name string) (Paradigm, error) {
	p := Paradigm(name)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return p, nil
}

// Check returns an error wrapping ErrUnknown when p is not supported.
func Check(p Paradigm) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknown, string(p))
	}
	return nil
}

// Callback is a continuation handed to an asynchronous function.
type Callback func(args ...any)

// Func is an asynchronous function in any paradigm. Callback paradigms receive
// their continuations as trailing arguments; the promise paradigm returns a
// Thenable instead.
type Func func(args ...any) any

// Thenable is the two-callback subscription contract of a promise-like value.
type Thenable interface {
	Then(onFulfilled, onRejected func(any))
}
