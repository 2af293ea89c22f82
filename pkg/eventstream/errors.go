package eventstream

import "errors"

var (
	// ErrNilRecordEvent indicates a nil record event payload was provided to a publisher.
	ErrNilRecordEvent = errors.New("nil record event")

	// ErrNilTurnEvent indicates a nil turn event payload was provided to a publisher.
	ErrNilTurnEvent = errors.New("nil turn event")
)
