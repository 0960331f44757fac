package shift_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/tailored-agentic-units/courier/forge"
	"github.com/tailored-agentic-units/courier/paradigm"
	"github.com/tailored-agentic-units/courier/promise"
	"github.com/tailored-agentic-units/courier/shift"
)

// double is a modern-paradigm function: double(n, callback).
func double(args ...any) any {
	n := args[0].(int)
	paradigm.AsCallback(args[1])(nil, n*2)
	return nil
}

// negate is a modern-paradigm function that always fails.
func negate(args ...any) any {
	paradigm.AsCallback(args[1])("negative")
	return nil
}

func TestShift_Single(t *testing.T) {
	res, err := shift.Of(shift.Single(double)).From(paradigm.Modern).To(paradigm.Classical)
	if err != nil {
		t.Fatalf("To() error = %v", err)
	}
	if res.Mapped() {
		t.Error("Mapped() = true for a single target")
	}

	var got any
	res.Func()(21, func(v any) { got = v }, func(any) {
		t.Error("errback should not be called")
	})

	if got != 42 {
		t.Errorf("callback got %v, want 42", got)
	}
}

func TestShift_Mapped(t *testing.T) {
	fns := map[string]any{
		"double":  double,
		"negate":  paradigm.Func(negate),
		"version": "1.0.0",
		"count":   3,
	}

	res, err := shift.Of(shift.Mapped(fns)).From(paradigm.Modern).To(paradigm.Promise)
	if err != nil {
		t.Fatalf("To() error = %v", err)
	}
	if !res.Mapped() {
		t.Fatal("Mapped() = false for a mapped target")
	}

	keys := make([]string, 0, len(res.Map()))
	for k := range res.Map() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) != 2 || keys[0] != "double" || keys[1] != "negate" {
		t.Fatalf("keys = %v, want [double negate]", keys)
	}

	var value any
	res.Map()["double"](5).(paradigm.Thenable).Then(func(v any) { value = v }, nil)
	if value != 10 {
		t.Errorf("double resolved %v, want 10", value)
	}

	var reason any
	res.Map()["negate"](5).(paradigm.Thenable).Then(nil, func(r any) { reason = r })
	if reason != "negative" {
		t.Errorf("negate rejected %v, want negative", reason)
	}
}

func TestShift_MappedMatchesSingle(t *testing.T) {
	single, err := shift.Func(double, paradigm.Modern, paradigm.Baroque)
	if err != nil {
		t.Fatalf("Func() error = %v", err)
	}
	mapped, err := shift.Map(map[string]any{"double": double}, paradigm.Modern, paradigm.Baroque)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	var a, b any
	single(4, func(any) {}, func(v any) { a = v })
	mapped["double"](4, func(any) {}, func(v any) { b = v })

	if a != b || a != 8 {
		t.Errorf("single = %v, mapped = %v, want both 8", a, b)
	}
}

func TestShift_InvalidTarget(t *testing.T) {
	tests := []struct {
		name   string
		target shift.Target
	}{
		{name: "zero target", target: shift.Target{}},
		{name: "nil function", target: shift.Single(nil)},
		{name: "nil mapping", target: shift.Mapped(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shift.Of(tt.target).From(paradigm.Modern).To(paradigm.Promise)
			if !errors.Is(err, shift.ErrInvalidArgument) {
				t.Errorf("To() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestShift_UnknownParadigm(t *testing.T) {
	_, err := shift.Of(shift.Single(double)).From("callback-hell").To(paradigm.Promise)
	if !errors.Is(err, paradigm.ErrUnknown) {
		t.Errorf("unknown source error = %v, want ErrUnknown", err)
	}

	_, err = shift.Of(shift.Single(double)).From(paradigm.Modern).To("observable")
	if !errors.Is(err, paradigm.ErrUnknown) {
		t.Errorf("unknown target error = %v, want ErrUnknown", err)
	}
}

func TestShift_IdentityShift(t *testing.T) {
	_, err := shift.Of(shift.Mapped(map[string]any{})).From(paradigm.Modern).To(paradigm.Modern)
	if !errors.Is(err, forge.ErrIdentityShift) {
		t.Errorf("To() error = %v, want ErrIdentityShift", err)
	}
}

func TestShift_WithEngine(t *testing.T) {
	var used bool
	engine := func(executor promise.Executor) paradigm.Thenable {
		used = true
		return promise.New(executor)
	}

	fn, err := shift.Func(double, paradigm.Modern, paradigm.Promise, forge.WithEngine(engine))
	if err != nil {
		t.Fatalf("Func() error = %v", err)
	}
	fn(1)

	if !used {
		t.Error("custom engine was not used")
	}
}

type counter struct {
	step int
}

func TestBind(t *testing.T) {
	c := &counter{step: 3}
	add := shift.Bind(c, func(c *counter, args ...any) any {
		paradigm.AsCallback(args[1])(nil, args[0].(int)+c.step)
		return nil
	})

	fn, err := shift.Func(add, paradigm.Modern, paradigm.Classical)
	if err != nil {
		t.Fatalf("Func() error = %v", err)
	}

	var got any
	fn(4, func(v any) { got = v }, func(any) {})
	if got != 7 {
		t.Errorf("callback got %v, want 7", got)
	}
}
