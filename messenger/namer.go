package messenger

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Namer produces names for messengers configured without one.
type Namer func() string

// NewNamer returns a Namer yielding prefix-1, prefix-2, ... Each Namer keeps
// its own counter.
func NewNamer(prefix string) Namer {
	var counter atomic.Uint64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, counter.Add(1))
	}
}

func defaultNamer() string {
	return "messenger-" + uuid.Must(uuid.NewV7()).String()
}
