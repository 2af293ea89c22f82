package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeStreamRecord is emitted for every recorded stream item.
	EventTypeStreamRecord = "genai.stream.record"

	// EventTypeTurnCompleted is emitted after a chat turn finishes streaming.
	EventTypeTurnCompleted = "genai.turn.completed"
)

// EventSource identifies where the event originated.
type EventSource struct {
	Host     string `json:"host,omitempty"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// StreamRecordEvent is a transport-neutral event payload for one recorded
// stream item.
type StreamRecordEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Source        EventSource    `json:"source"`
	Record        storage.Record `json:"record"`
}

// NewStreamRecordEvent wraps record in an event with a fresh id.
func NewStreamRecordEvent(record storage.Record, host string) *StreamRecordEvent {
	return &StreamRecordEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeStreamRecord,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source: EventSource{
			Host:     host,
			Provider: record.Provider,
			Model:    record.Model,
		},
		Record: record,
	}
}

// TurnCompletedEvent is a transport-neutral event payload for a finished
// chat turn.
type TurnCompletedEvent struct {
	SchemaVersion int                  `json:"schema_version"`
	EventType     string               `json:"event_type"`
	EventID       string               `json:"event_id"`
	EmittedAt     time.Time            `json:"emitted_at"`
	Source        EventSource          `json:"source"`
	SessionID     string               `json:"session_id"`
	StartedAt     time.Time            `json:"started_at"`
	CompletedAt   time.Time            `json:"completed_at"`
	DurationMs    int64                `json:"duration_ms"`
	Turn          llm.ConversationTurn `json:"turn"`
}

// NewTurnCompletedEvent wraps turn in an event with a fresh id.
func NewTurnCompletedEvent(sessionID string, turn llm.ConversationTurn, startedAt, completedAt time.Time) *TurnCompletedEvent {
	ev := &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        EventSource{Provider: turn.Provider},
		SessionID:     sessionID,
		StartedAt:     startedAt,
		CompletedAt:   completedAt,
		DurationMs:    completedAt.Sub(startedAt).Milliseconds(),
		Turn:          turn,
	}
	if turn.Request != nil {
		ev.Source.Model = turn.Request.Model
	}
	return ev
}
