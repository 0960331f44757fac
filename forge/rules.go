package forge

import (
	"math"

	"github.com/tailored-agentic-units/courier/paradigm"
	"github.com/tailored-agentic-units/courier/promise"
)

type route struct {
	from paradigm.Paradigm
	to   paradigm.Paradigm
}

// invoker calls the original function under its source convention and
// reports the outcome to ok or fail.
type invoker func(fn paradigm.Func, rest []any, ok, fail func(any))

// delivery exposes the outcome of run to the caller under the target
// convention and returns the adapter's result.
type delivery func(sig paradigm.Signature, engine promise.Engine, run func(ok, fail func(any))) any

type rule struct {
	invoke  invoker
	deliver delivery
}

var rules = map[route]rule{
	{paradigm.Classical, paradigm.Baroque}: {invoke: callbackPair, deliver: toCallbacks},
	{paradigm.Classical, paradigm.Modern}:  {invoke: callbackPair, deliver: toErrorFirst},
	{paradigm.Classical, paradigm.Promise}: {invoke: callbackPair, deliver: toPromise},

	{paradigm.Baroque, paradigm.Classical}: {invoke: reversedPair, deliver: toCallbacks},
	{paradigm.Baroque, paradigm.Modern}:    {invoke: reversedPair, deliver: toErrorFirst},
	{paradigm.Baroque, paradigm.Promise}:   {invoke: reversedPair, deliver: toPromise},

	{paradigm.Modern, paradigm.Classical}: {invoke: errorFirst, deliver: toCallbacks},
	{paradigm.Modern, paradigm.Baroque}:   {invoke: errorFirst, deliver: toCallbacks},
	{paradigm.Modern, paradigm.Promise}:   {invoke: errorFirst, deliver: toPromise},

	{paradigm.Promise, paradigm.Classical}: {invoke: thenable, deliver: toCallbacks},
	{paradigm.Promise, paradigm.Baroque}:   {invoke: thenable, deliver: toCallbacks},
	{paradigm.Promise, paradigm.Modern}:    {invoke: thenable, deliver: toErrorFirst},
}

// Source invokers.

func callbackPair(fn paradigm.Func, rest []any, ok, fail func(any)) {
	fn(append(rest, first(ok), first(fail))...)
}

func reversedPair(fn paradigm.Func, rest []any, ok, fail func(any)) {
	fn(append(rest, first(fail), first(ok))...)
}

func errorFirst(fn paradigm.Func, rest []any, ok, fail func(any)) {
	fn(append(rest, paradigm.Callback(func(args ...any) {
		err, result := arg(args, 0), arg(args, 1)
		if falsy(err) {
			ok(result)
		} else {
			fail(err)
		}
	}))...)
}

func thenable(fn paradigm.Func, rest []any, ok, fail func(any)) {
	t, isThenable := fn(rest...).(paradigm.Thenable)
	if !isThenable {
		fail(ErrNotThenable)
		return
	}
	t.Then(ok, fail)
}

// Target deliveries.

func toCallbacks(sig paradigm.Signature, _ promise.Engine, run func(ok, fail func(any))) any {
	run(
		func(result any) { sig.Call(result) },
		func(err any) { sig.CallErr(err) },
	)
	return nil
}

func toErrorFirst(sig paradigm.Signature, _ promise.Engine, run func(ok, fail func(any))) any {
	run(
		func(result any) { sig.Call(nil, result) },
		func(err any) { sig.Call(orSentinel(err)) },
	)
	return nil
}

func toPromise(_ paradigm.Signature, engine promise.Engine, run func(ok, fail func(any))) any {
	return engine(func(resolve, reject func(any)) {
		run(resolve, reject)
	})
}

// first adapts a single-value continuation to a Callback that forwards its
// first argument.
func first(next func(any)) paradigm.Callback {
	return func(args ...any) {
		next(arg(args, 0))
	}
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func orSentinel(err any) any {
	if falsy(err) {
		return FailureSentinel
	}
	return err
}

// falsy reports whether v carries no error under error-first conventions.
func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case int:
		return x == 0
	case int8:
		return x == 0
	case int16:
		return x == 0
	case int32:
		return x == 0
	case int64:
		return x == 0
	case uint:
		return x == 0
	case uint8:
		return x == 0
	case uint16:
		return x == 0
	case uint32:
		return x == 0
	case uint64:
		return x == 0
	case float32:
		return x == 0 || math.IsNaN(float64(x))
	case float64:
		return x == 0 || math.IsNaN(x)
	}
	return false
}
