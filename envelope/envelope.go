package envelope

import (
	"encoding/json"
	"fmt"
)

// Wildcard is the subscription key matching every head.
const Wildcard = "*"

type Envelope struct {
	From string `json:"from"`
	To   string `json:"to,omitempty"`
	ID   uint64 `json:"id,omitempty"`
	Head string `json:"head,omitempty"`
	Body any    `json:"body"`
}

func (env Envelope) IsRequest() bool {
	return env.ID != 0 && env.Head != ""
}

func (env Envelope) IsReply() bool {
	return env.ID != 0 && env.Head == ""
}

func (env Envelope) IsBroadcast() bool {
	return env.To == ""
}

// AddressedTo reports whether the envelope reaches the named endpoint, either
// directly or by broadcast.
func (env Envelope) AddressedTo(name string) bool {
	return env.To == "" || env.To == name
}

func (env Envelope) String() string {
	return fmt.Sprintf(
		"Envelope{From: %s, To: %s, ID: %d, Head: %s}",
		env.From,
		env.To,
		env.ID,
		env.Head,
	)
}

// ValidHead reports whether head may be used on an outgoing envelope.
func ValidHead(head string) bool {
	return head != "" && head != Wildcard
}

func Encode(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
