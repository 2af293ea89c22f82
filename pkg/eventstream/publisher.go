// Package eventstream publishes recorded stream items and completed chat
// turns to an event stream backend.
package eventstream

import "context"

// Publisher publishes events to an event stream backend.
type Publisher interface {
	PublishRecord(ctx context.Context, event *StreamRecordEvent) error
	PublishTurn(ctx context.Context, event *TurnCompletedEvent) error
	Close() error
}
