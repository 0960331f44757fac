package messenger

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidTransport = errors.New("invalid emitter or receptor")
	ErrUnknownListener  = errors.New("unknown listener")
	ErrShot             = errors.New("messenger has been shot")
	ErrAlreadyShot      = errors.New("messenger has already been shot")
	ErrTimeout          = errors.New("request timed out")
)

// TimeoutError rejects a request whose reply did not arrive in time.
type TimeoutError struct {
	ID    uint64
	Head  string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %d (%s) timed out after %v", e.ID, e.Head, e.After)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
