package memory

import "errors"

var (
	ErrClosed          = errors.New("endpoint closed")
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrDuplicateName   = errors.New("endpoint name already in use")
)
