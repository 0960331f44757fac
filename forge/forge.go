package forge

import (
	"fmt"

	"github.com/tailored-agentic-units/courier/paradigm"
	"github.com/tailored-agentic-units/courier/promise"
)

// FailureSentinel replaces falsy errors delivered to error-first callbacks.
const FailureSentinel = true

// Option configures Build.
type Option func(*options)

type options struct {
	engine promise.Engine
}

// WithEngine sets the engine used to build promises when targeting the
// promise paradigm. A nil engine keeps the default.
func WithEngine(engine promise.Engine) Option {
	return func(o *options) {
		if engine != nil {
			o.engine = engine
		}
	}
}

// Build returns an adapter exposing fn, written in the from paradigm, under
// the to paradigm. Paradigms are validated before the identity check, and
// neither check touches fn.
func Build(fn paradigm.Func, from, to paradigm.Paradigm, opts ...Option) (paradigm.Func, error) {
	if err := paradigm.Check(from); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := paradigm.Check(to); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if from == to {
		return nil, fmt.Errorf("%w: %s", ErrIdentityShift, from)
	}
	if fn == nil {
		return nil, ErrNilFunc
	}

	o := options{engine: promise.DefaultEngine}
	for _, opt := range opts {
		opt(&o)
	}

	r, ok := rules[route{from: from, to: to}]
	if !ok {
		return nil, fmt.Errorf("%w: no rule from %s to %s", paradigm.ErrUnknown, from, to)
	}

	return func(args ...any) any {
		sig := paradigm.Extract(to, args)
		return r.deliver(sig, o.engine, func(ok, fail func(any)) {
			r.invoke(fn, sig.Rest, ok, fail)
		})
	}, nil
}

// MustBuild is like Build but panics on error. It is meant for package-level
// adapters whose paradigms are constants.
func MustBuild(fn paradigm.Func, from, to paradigm.Paradigm, opts ...Option) paradigm.Func {
	adapter, err := Build(fn, from, to, opts...)
	if err != nil {
		panic(err)
	}
	return adapter
}
