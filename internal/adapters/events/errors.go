package events

import "errors"

// ErrPublish is returned when the event bus rejects or fails to accept the
// quality event.
var ErrPublish = errors.New("failed to publish quality event")
