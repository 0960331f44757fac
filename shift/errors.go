package shift

import "errors"

// ErrInvalidArgument is returned when the conversion target is neither a
// function nor a mapping of functions.
var ErrInvalidArgument = errors.New("invalid argument")
