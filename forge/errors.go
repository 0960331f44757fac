package forge

import "errors"

var (
	// ErrIdentityShift is returned when converting a paradigm to itself.
	ErrIdentityShift = errors.New("cannot shift a function to the same paradigm")
	// ErrNilFunc is returned when the function to convert is nil.
	ErrNilFunc = errors.New("function is nil")
	// ErrNotThenable is delivered as a failure when a promise-paradigm
	// function does not return a Thenable.
	ErrNotThenable = errors.New("promise function did not return a thenable")
)
