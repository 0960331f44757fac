package messenger

import "github.com/tailored-agentic-units/courier/envelope"

// Handler receives the body of a matching envelope and a Reply bound to its
// sender and id.
type Handler func(body any, reply Reply)

// Reply answers the envelope a Handler was invoked for.
type Reply func(data any)

// Listener is the handle returned when registering a Handler. Pass it to Off
// to unregister.
type Listener struct {
	head    string
	from    string
	once    bool
	handler Handler
}

func (l *Listener) Head() string { return l.head }
func (l *Listener) From() string { return l.from }
func (l *Listener) Once() bool   { return l.once }

// accepts reports whether the listener's sender filter admits env.
func (l *Listener) accepts(env envelope.Envelope) bool {
	return l.from == "" || l.from == env.From
}

// registry keeps listeners bucketed by head in registration order.
type registry struct {
	buckets map[string][]*Listener
}

func newRegistry() *registry {
	return &registry{buckets: make(map[string][]*Listener)}
}

func (r *registry) add(l *Listener) {
	r.buckets[l.head] = append(r.buckets[l.head], l)
}

func (r *registry) remove(head string, l *Listener) bool {
	bucket := r.buckets[head]
	for i, candidate := range bucket {
		if candidate != l {
			continue
		}
		bucket = append(bucket[:i:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(r.buckets, head)
		} else {
			r.buckets[head] = bucket
		}
		return true
	}
	return false
}

func (r *registry) removeEverywhere(l *Listener) bool {
	removed := false
	for head := range r.buckets {
		if r.remove(head, l) {
			removed = true
		}
	}
	return removed
}

func (r *registry) drop(head string) bool {
	if _, ok := r.buckets[head]; !ok {
		return false
	}
	delete(r.buckets, head)
	return true
}

// candidates returns the head bucket followed by the wildcard bucket. The
// result is a fresh slice.
func (r *registry) candidates(head string) []*Listener {
	if head == envelope.Wildcard {
		return append([]*Listener(nil), r.buckets[envelope.Wildcard]...)
	}

	specific := r.buckets[head]
	wildcard := r.buckets[envelope.Wildcard]
	out := make([]*Listener, 0, len(specific)+len(wildcard))
	out = append(out, specific...)
	return append(out, wildcard...)
}

func (r *registry) reset() {
	r.buckets = make(map[string][]*Listener)
}

func (r *registry) len() int {
	n := 0
	for _, bucket := range r.buckets {
		n += len(bucket)
	}
	return n
}
