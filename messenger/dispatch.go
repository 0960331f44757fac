package messenger

import "github.com/tailored-agentic-units/courier/envelope"

// dispatchPlan is what one inbound envelope does to a messenger: listeners to
// invoke, once-listeners to unregister, and the pending call to settle (zero
// for none).
type dispatchPlan struct {
	invoke []*Listener
	expire []*Listener
	settle uint64
}

func (p dispatchPlan) empty() bool {
	return len(p.invoke) == 0 && p.settle == 0
}

// plan computes the dispatch of env for the messenger named self without
// mutating anything. pending reports whether a call id is awaiting a reply.
// Only replies settle calls; a peer's request may reuse one of our ids.
func plan(reg *registry, pending func(uint64) bool, self string, env envelope.Envelope) dispatchPlan {
	var p dispatchPlan

	if env.From == "" {
		return p
	}

	if env.Head != "" && env.AddressedTo(self) {
		for _, l := range reg.candidates(env.Head) {
			if !l.accepts(env) {
				continue
			}
			p.invoke = append(p.invoke, l)
			if l.once {
				p.expire = append(p.expire, l)
			}
		}
	}

	if env.IsReply() && env.To == self && pending(env.ID) {
		p.settle = env.ID
	}

	return p
}
