// Package shift is the entry point for converting functions between
// paradigms. It accepts either a single function or a keyed set of functions
// and returns the adapters built by the forge:
//
//	res, err := shift.Of(shift.Single(readFile)).From(paradigm.Modern).To(paradigm.Promise)
//	read := res.Func()
package shift

import (
	"fmt"

	"github.com/tailored-agentic-units/courier/forge"
	"github.com/tailored-agentic-units/courier/paradigm"
)

type targetKind int

const (
	kindNone targetKind = iota
	kindSingle
	kindMapped
)

// Target is the function, or keyed set of functions, to convert. Build it
// with Single or Mapped; the zero Target is invalid.
type Target struct {
	kind targetKind
	fn   paradigm.Func
	fns  map[string]paradigm.Func
}

// Single targets one function.
func Single(fn paradigm.Func) Target {
	if fn == nil {
		return Target{}
	}
	return Target{kind: kindSingle, fn: fn}
}

// Mapped targets every function-valued entry of fns. Entries that are not
// functions are dropped.
func Mapped(fns map[string]any) Target {
	if fns == nil {
		return Target{}
	}

	kept := make(map[string]paradigm.Func, len(fns))
	for key, v := range fns {
		if fn := asFunc(v); fn != nil {
			kept[key] = fn
		}
	}
	return Target{kind: kindMapped, fns: kept}
}

func asFunc(v any) paradigm.Func {
	switch fn := v.(type) {
	case paradigm.Func:
		return fn
	case func(...any) any:
		return fn
	}
	return nil
}

// Bind fixes the receiver of a method-shaped function, producing a Func that
// always runs against scope.
func Bind[S any](scope S, method func(S, ...any) any) paradigm.Func {
	return func(args ...any) any {
		return method(scope, args...)
	}
}

// Shifter carries a validated target through From and To.
type Shifter struct {
	target Target
	err    error
}

// Of starts a conversion. An invalid target is reported by To.
func Of(target Target) *Shifter {
	s := &Shifter{target: target}
	if target.kind == kindNone {
		s.err = fmt.Errorf("%w: target must be a function or a mapping of functions", ErrInvalidArgument)
	}
	return s
}

// Stage is a conversion whose source paradigm is known.
type Stage struct {
	shifter *Shifter
	from    paradigm.Paradigm
	err     error
}

// From sets the source paradigm.
func (s *Shifter) From(from paradigm.Paradigm) *Stage {
	st := &Stage{shifter: s, from: from, err: s.err}
	if st.err == nil {
		st.err = paradigm.Check(from)
	}
	return st
}

// To builds the adapters for the target paradigm. Options are passed to the
// forge; forge.WithEngine only matters when to is the promise paradigm.
func (st *Stage) To(to paradigm.Paradigm, opts ...forge.Option) (Result, error) {
	if st.err != nil {
		return Result{}, st.err
	}
	if err := paradigm.Check(to); err != nil {
		return Result{}, err
	}
	if st.from == to {
		return Result{}, fmt.Errorf("%w: %s", forge.ErrIdentityShift, to)
	}

	target := st.shifter.target
	switch target.kind {
	case kindSingle:
		fn, err := forge.Build(target.fn, st.from, to, opts...)
		if err != nil {
			return Result{}, err
		}
		return Result{fn: fn}, nil

	default:
		shifted := make(map[string]paradigm.Func, len(target.fns))
		for key, fn := range target.fns {
			adapter, err := forge.Build(fn, st.from, to, opts...)
			if err != nil {
				return Result{}, fmt.Errorf("shift %q: %w", key, err)
			}
			shifted[key] = adapter
		}
		return Result{fns: shifted, mapped: true}, nil
	}
}

// Result holds the adapters produced by To, shaped like the Target.
type Result struct {
	fn     paradigm.Func
	fns    map[string]paradigm.Func
	mapped bool
}

// Mapped reports whether the result came from a Mapped target.
func (r Result) Mapped() bool {
	return r.mapped
}

// Func returns the adapter of a Single target, nil otherwise.
func (r Result) Func() paradigm.Func {
	return r.fn
}

// Map returns the adapters of a Mapped target keyed like the input.
func (r Result) Map() map[string]paradigm.Func {
	return r.fns
}

// Func converts one function. It is shorthand for Of(Single(fn)).From(from).To(to).
func Func(fn paradigm.Func, from, to paradigm.Paradigm, opts ...forge.Option) (paradigm.Func, error) {
	res, err := Of(Single(fn)).From(from).To(to, opts...)
	if err != nil {
		return nil, err
	}
	return res.Func(), nil
}

// Map converts a keyed set of functions.
func Map(fns map[string]any, from, to paradigm.Paradigm, opts ...forge.Option) (map[string]paradigm.Func, error) {
	res, err := Of(Mapped(fns)).From(from).To(to, opts...)
	if err != nil {
		return nil, err
	}
	return res.Map(), nil
}
