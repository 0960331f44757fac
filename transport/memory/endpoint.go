package memory

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/courier/envelope"
)

// Endpoint is one named attachment to a Bus.
type Endpoint struct {
	name  string
	bus   *Bus
	inbox *Inbox[envelope.Envelope]

	receiveOnce sync.Once
	closeOnce   sync.Once
	done        chan struct{}
}

func (e *Endpoint) Name() string {
	return e.name
}

// Emit routes env through the bus. It matches messenger.Emitter.
func (e *Endpoint) Emit(ctx context.Context, env envelope.Envelope) error {
	if e.inbox.IsClosed() {
		return ErrClosed
	}
	return e.bus.route(ctx, e.name, env)
}

// Receive starts delivering queued envelopes to handler on a dedicated
// goroutine. Only the first call has an effect. It matches
// messenger.Receptor.
// Envelopes are handled one at a time.
func (e *Endpoint) Receive(handler func(envelope.Envelope)) {
	e.receiveOnce.Do(func() {
		go e.pump(handler)
	})
}

func (e *Endpoint) pump(handler func(envelope.Envelope)) {
	defer close(e.done)

	for {
		env, err := e.inbox.Receive(context.Background())
		if err != nil {
			return
		}
		handler(env)
	}
}

// Capacity returns the inbox size. Emit blocks while the inbox is full.
func (e *Endpoint) Capacity() int {
	return e.inbox.BufferSize()
}

// Pending returns the number of envelopes waiting to be handled.
func (e *Endpoint) Pending() int {
	return e.inbox.QueueLength()
}

// Close detaches the endpoint. Envelopes still queued are discarded.
func (e *Endpoint) Close() {
	e.closeOnce.Do(func() {
		e.bus.detach(e.name)
		e.inbox.Close()
	})
}

// Done is closed once the receive pump has stopped. It never closes if
// Receive was not called.
func (e *Endpoint) Done() <-chan struct{} {
	return e.done
}
