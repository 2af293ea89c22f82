package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/genai/pkg/eventstream"
)

// MockPublisher is a test publisher that records published events.
type MockPublisher struct {
	mu      sync.Mutex
	records []*eventstream.StreamRecordEvent
	turns   []*eventstream.TurnCompletedEvent

	// FailPublish causes every publish call to return an error.
	FailPublish bool

	Closed bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishRecord(_ context.Context, event *eventstream.StreamRecordEvent) error {
	if event == nil {
		return eventstream.ErrNilRecordEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPublish {
		return fmt.Errorf("mock publish failure for record %d", event.Record.Sequence)
	}
	m.records = append(m.records, event)
	return nil
}

func (m *MockPublisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPublish {
		return fmt.Errorf("mock publish failure for turn %s", event.SessionID)
	}
	m.turns = append(m.turns, event)
	return nil
}

// Records returns the record events published so far.
func (m *MockPublisher) Records() []*eventstream.StreamRecordEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.StreamRecordEvent(nil), m.records...)
}

// Turns returns the turn events published so far.
func (m *MockPublisher) Turns() []*eventstream.TurnCompletedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.TurnCompletedEvent(nil), m.turns...)
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
