package llm

import (
	"errors"
	"io"
	"iter"
	"time"
)

// StreamChunk represents a single chunk in a streaming response.
type StreamChunk struct {
	// Model that generated the chunk
	Model string `json:"model"`

	// Chunk timestamp
	CreatedAt time.Time `json:"created_at,omitzero"`

	// The content of this chunk (typically a partial message)
	Message Message `json:"message"`

	// Whether this is the final chunk
	Done bool `json:"done"`

	// Index for providers that support multiple parallel completions
	Index int `json:"index,omitempty"`

	// Stop reason (only present on final chunk)
	StopReason string `json:"stop_reason,omitempty"`

	// Usage metrics (typically only present on final chunk)
	Usage *Usage `json:"usage,omitempty"`
}

// ChunkStream is a provider stream translated into StreamChunks.
//
// Next returns io.EOF once the stream is exhausted. Errors that leave the
// stream usable, such as a single undecodable event, may be followed by
// further chunks; callers decide whether to keep reading.
type ChunkStream interface {
	Next() (*StreamChunk, error)
	Close() error
}

// Chunks ranges over s until io.EOF and closes it when iteration stops.
func Chunks(s ChunkStream) iter.Seq2[*StreamChunk, error] {
	return func(yield func(*StreamChunk, error) bool) {
		defer s.Close()
		for {
			chunk, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(chunk, err) {
				return
			}
		}
	}
}
