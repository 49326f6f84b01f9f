package model

import "errors"

// ErrUnknownPort is returned when a port identifier is not part of the registry.
var ErrUnknownPort = errors.New("unknown port")

// ErrMalformedInterval is returned when a timestamp cannot be parsed or when
// the start of a window is not strictly before its end.
var ErrMalformedInterval = errors.New("malformed interval")
