package paradigm

// Signature is the split of a raw argument list into the continuations a
// paradigm expects and the remaining positional arguments.
type Signature struct {
	Callback Callback
	Errback  Callback
	Rest     []any
}

// Call invokes the callback. A missing callback is a no-op.
func (s Signature) Call(args ...any) {
	if s.Callback != nil {
		s.Callback(args...)
	}
}

// CallErr invokes the errback. A missing errback is a no-op.
func (s Signature) CallErr(args ...any) {
	if s.Errback != nil {
		s.Errback(args...)
	}
}

// Extract splits args according to the calling convention of p.
//
// Classical and baroque functions may be "loners" that accept a single
// callback. The heuristic counts function-typed arguments from the end of
// the list, stopping at the first non-function and capping at two: a single
// trailing function is taken as the callback with a no-op errback. With no
// trailing function every argument is positional.
func Extract(p Paradigm, args []any) Signature {
	l := len(args)

	switch p {
	case Classical, Baroque:
		switch trailingCallbacks(args) {
		case 0:
			return Signature{Errback: noop, Rest: head(args, l)}
		case 1:
			return Signature{
				Callback: AsCallback(args[l-1]),
				Errback:  noop,
				Rest:     head(args, l-1),
			}
		}

		first, second := at(args, l-2), at(args, l-1)
		if p == Baroque {
			first, second = second, first
		}
		return Signature{
			Callback: AsCallback(first),
			Errback:  orNoop(AsCallback(second)),
			Rest:     head(args, l-2),
		}

	case Modern:
		if trailingCallbacks(args) == 0 {
			return Signature{Errback: noop, Rest: head(args, l)}
		}
		return Signature{
			Callback: AsCallback(args[l-1]),
			Errback:  noop,
			Rest:     head(args, l-1),
		}

	default:
		return Signature{Rest: head(args, l)}
	}
}

// AsCallback adapts the function shapes accepted as continuations to a
// Callback. It returns nil for anything else, including a nil function of an
// accepted shape.
func AsCallback(v any) Callback {
	switch fn := v.(type) {
	case Callback:
		if fn != nil {
			return fn
		}
	case func(...any):
		if fn != nil {
			return fn
		}
	case func(any):
		if fn != nil {
			return func(args ...any) { fn(at(args, 0)) }
		}
	case func(any, any):
		if fn != nil {
			return func(args ...any) { fn(at(args, 0), at(args, 1)) }
		}
	case func():
		if fn != nil {
			return func(...any) { fn() }
		}
	}
	return nil
}

// IsCallback reports whether v is a non-nil function shape usable as a
// continuation.
func IsCallback(v any) bool {
	return AsCallback(v) != nil
}

// callbackShape reports whether v has a continuation shape, nil or not. A nil
// continuation still occupies its slot in the argument list.
func callbackShape(v any) bool {
	switch v.(type) {
	case Callback, func(...any), func(any), func(any, any), func():
		return true
	}
	return false
}

func trailingCallbacks(args []any) int {
	n := 0
	for i := len(args) - 1; i >= 0 && n < 2; i-- {
		if !callbackShape(args[i]) {
			break
		}
		n++
	}
	return n
}

func at(args []any, i int) any {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

func head(args []any, n int) []any {
	if n <= 0 {
		return []any{}
	}
	out := make([]any, n)
	copy(out, args[:n])
	return out
}

func orNoop(cb Callback) Callback {
	if cb == nil {
		return noop
	}
	return cb
}

func noop(...any) {}
