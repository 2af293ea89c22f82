// Package storage persists recorded SSE stream items.
package storage

import (
	"context"
	"errors"
	"time"
)

// Kind classifies a recorded stream item.
type Kind string

const (
	// KindEvent is a successfully decoded event.
	KindEvent Kind = "event"

	// KindDecodeError is a payload that did not decode into the event type.
	KindDecodeError Kind = "decode_error"

	// KindEncodingError is stream bytes that were not valid UTF-8.
	KindEncodingError Kind = "encoding_error"

	// KindTransportError is a failure reading the response body.
	KindTransportError Kind = "transport_error"
)

// Record is one item observed on a stream.
type Record struct {
	SessionID string `json:"session_id"`

	// Sequence orders the records of a session, starting at 0.
	Sequence int `json:"sequence"`

	Provider string `json:"provider"`
	Model    string `json:"model"`
	Kind     Kind   `json:"kind"`

	// Payload is the raw data payload. Empty for terminal errors.
	Payload string `json:"payload,omitempty"`

	// Error is the error message for error kinds.
	Error string `json:"error,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
}

// Validate reports whether the record can be stored.
func (r *Record) Validate() error {
	if r == nil {
		return errors.New("cannot store nil record")
	}
	if r.SessionID == "" {
		return errors.New("record has no session id")
	}
	if r.Sequence < 0 {
		return errors.New("record has a negative sequence")
	}
	return nil
}

// Session summarizes the records of one stream.
type Session struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Records   int       `json:"records"`
	StartedAt time.Time `json:"started_at"`
	LastAt    time.Time `json:"last_at"`
}

// Driver defines the interface for persisting and retrieving stream records
// in a storage backend.
type Driver interface {
	// PutRecord stores a record. Returns true if the record was newly
	// inserted, false if a record with the same session and sequence
	// already exists, in which case this is a no-op.
	PutRecord(ctx context.Context, record *Record) (bool, error)

	// Records returns the records of a session ordered by sequence.
	// Returns NotFoundError when the session has no records.
	Records(ctx context.Context, sessionID string) ([]*Record, error)

	// Sessions returns a summary of every recorded session, oldest first.
	Sessions(ctx context.Context) ([]*Session, error)

	// Close closes the store and releases any resources.
	Close() error
}
