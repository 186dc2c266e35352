package mqtt

import "errors"

// ErrNotConnected is returned when an operation needs an established broker
// connection.
var ErrNotConnected = errors.New("mqtt: not connected")
