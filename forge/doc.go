// Package forge builds adapters that expose an asynchronous function under a
// different calling convention.
//
// An adapter always reads its own arguments with the target paradigm's
// signature, then calls the original function the way its source paradigm
// expects, and finally translates the outcome back to the caller:
//
//	modern, err := forge.Build(classicalFn, paradigm.Classical, paradigm.Modern)
//	modern("input", func(err, result any) { ... })
//
// # Conversion Table
//
// Every ordered pair of distinct paradigms has exactly one rule. A rule pairs
// a source invoker (how the original is called and how its outcome is
// observed) with a delivery (how the outcome reaches the caller):
//
//   - invokers: callback pair, reversed callback pair, error-first, thenable
//   - deliveries: callbacks, error-first, promise engine
//
// # Failure Sentinel
//
// Error-first callers cannot tell a failure carrying a falsy error from a
// success. When delivering a failure in the modern convention, a falsy error
// (nil, false, "", numeric zero) is replaced by FailureSentinel (true).
//
// # Promise Engine
//
// Adapters targeting the promise paradigm return the Thenable produced by the
// configured promise.Engine. WithEngine replaces the default engine.
package forge
