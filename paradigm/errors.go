package paradigm

import "errors"

// ErrUnknown is returned when a paradigm name is not one of the supported
// calling conventions.
var ErrUnknown = errors.New("unknown paradigm")
