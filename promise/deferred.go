package promise

// Deferred exposes the settlement functions of a promise to code that
// completes it later, such as a pending request waiting for its reply.
type Deferred struct {
	Promise *Promise
}

// NewDeferred returns a deferred wrapping a fresh pending promise.
func NewDeferred() *Deferred {
	return &Deferred{Promise: newPending()}
}

// Resolve fulfills the underlying promise. Only the first settlement counts.
func (d *Deferred) Resolve(value any) {
	d.Promise.resolve(value)
}

// Reject rejects the underlying promise. Only the first settlement counts.
func (d *Deferred) Reject(reason any) {
	d.Promise.reject(reason)
}
