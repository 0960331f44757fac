// Package envelope defines the unit exchanged between messengers.
//
// An envelope names its sender, optionally its addressee, and carries an
// opaque body under a head (the message topic). Envelopes that belong to a
// request/reply pair carry a correlation ID:
//
//   - Notification: head, no ID
//   - Request: head and ID
//   - Reply: ID and addressee, no head
//
// An empty addressee means broadcast. The head "*" is reserved for wildcard
// subscriptions and is never valid on an outgoing envelope.
//
// # Construction
//
//	env := envelope.New("alpha", "ping", "x").To("beta").ID(7).Build()
//	reply := envelope.NewReply("beta", env.From, env.ID, "pong").Build()
//
// # Wire Format
//
// Encode and Decode use JSON with the field names from, to, id, head and body.
// Empty to, id and head fields are omitted.
package envelope
