package pubsub

import "errors"

// ErrConnRequired indicates a nil NATS connection was passed.
var ErrConnRequired = errors.New("nats connection is required")
