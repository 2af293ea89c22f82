package sse

import (
	"errors"
	"fmt"
)

// ErrEventTooLarge is wrapped by a TransportError when the buffered, not yet
// delimited text grows beyond the configured maximum event size.
var ErrEventTooLarge = errors.New("sse event exceeds maximum size")

// TransportError reports a failure of the underlying byte source. It is
// terminal: the stream yields it once and then ends.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sse transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// EncodingError reports bytes that are not valid UTF-8. It is terminal.
type EncodingError struct {
	// Offset is the position of the first invalid byte from the start of
	// the stream.
	Offset int64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("sse encoding: invalid utf-8 at byte offset %d", e.Offset)
}

// DecodeError reports a data payload that could not be decoded into the
// stream's event type. It is not terminal and the stream keeps going.
type DecodeError struct {
	// Payload is the raw data payload that failed to decode.
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sse decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsTerminal reports whether err ends a stream.
func IsTerminal(err error) bool {
	var te *TransportError
	var ee *EncodingError
	return errors.As(err, &te) || errors.As(err, &ee)
}
