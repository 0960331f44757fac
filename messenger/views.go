package messenger

import (
	"context"

	"github.com/tailored-agentic-units/courier/promise"
)

// Outbox sends and requests to a single peer.
type Outbox struct {
	m  *Messenger
	to string
}

// To returns an Outbox addressing name.
func (m *Messenger) To(name string) *Outbox {
	return &Outbox{m: m, to: name}
}

func (o *Outbox) Send(ctx context.Context, head string, body any) error {
	return o.m.SendTo(ctx, o.to, head, body)
}

func (o *Outbox) Request(ctx context.Context, head string, body any, opts ...RequestOption) (*promise.Promise, error) {
	return o.m.RequestTo(ctx, o.to, head, body, opts...)
}

// Inbox registers listeners that only accept envelopes from a single peer.
type Inbox struct {
	m    *Messenger
	from string
}

// From returns an Inbox filtering on sender name.
func (m *Messenger) From(name string) *Inbox {
	return &Inbox{m: m, from: name}
}

func (i *Inbox) On(head string, handler Handler) (*Listener, error) {
	return i.m.OnFrom(i.from, head, handler)
}

func (i *Inbox) Once(head string, handler Handler) (*Listener, error) {
	return i.m.OnceFrom(i.from, head, handler)
}

// Off unregisters a listener obtained from this Inbox. Listeners bound to
// another sender are reported as unknown.
func (i *Inbox) Off(head string, l *Listener) error {
	if l == nil || l.from != i.from {
		return ErrUnknownListener
	}
	return i.m.Off(head, l)
}
