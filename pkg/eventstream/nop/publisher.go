// Package nop provides a publisher that drops every event.
package nop

import (
	"context"

	"github.com/papercomputeco/genai/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishRecord validates input and otherwise does nothing.
func (p *Publisher) PublishRecord(_ context.Context, event *eventstream.StreamRecordEvent) error {
	if event == nil {
		return eventstream.ErrNilRecordEvent
	}

	return nil
}

// PublishTurn validates input and otherwise does nothing.
func (p *Publisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
