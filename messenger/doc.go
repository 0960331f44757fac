// Package messenger implements request/reply messaging over any transport
// that can be reduced to two functions: an Emitter that hands an envelope to
// the wire and a Receptor that registers the inbound handler.
//
// # Requests
//
// Each request gets the next id from a per-messenger counter and a timer.
// The returned promise resolves with the body of the first reply addressed
// to this messenger carrying that id, or rejects with a *TimeoutError:
//
//	p, err := m.Request(ctx, "ping", "x", messenger.WithTimeout(500*time.Millisecond))
//	if err != nil {
//	    return err
//	}
//	body, err := p.Await(ctx)
//
// Call exposes the same request in the paradigm the messenger was configured
// with, so a modern messenger takes an error-first callback instead:
//
//	m.Call("ping", "x", func(err, body any) { ... })
//
// # Listeners
//
// On, Once and their From variants register handlers per head; "*" receives
// every head. Handlers get the body and a Reply that answers the sender.
// Replies themselves carry no head and only settle pending requests.
//
// # Dispatch
//
// Every inbound envelope is first turned into a plan (listeners to invoke,
// once-listeners to drop, pending call to settle) under the messenger's lock.
// Handlers, promise settlement and emission then run without the lock held,
// so handlers may call back into the messenger. Transports may deliver on a
// single goroutine (the memory transport does), so a handler must not block
// awaiting the promise of a request it sends: the reply cannot arrive until
// the handler returns.
//
// # Teardown
//
// Shoot is terminal. Pending requests reject with ErrShot and all later
// operations return ErrShot.
package messenger
