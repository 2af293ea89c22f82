package sse

import (
	"errors"
	"io"
	"iter"

	"github.com/papercomputeco/genai/pkg/utils"
)

// state is the lifecycle position of a Stream.
type state int

const (
	// stateAwaitingInput means the buffer holds no complete block and the
	// body must be read.
	stateAwaitingInput state = iota

	// stateHasEvent means the buffer may hold complete blocks.
	stateHasEvent

	// stateDraining means the body is exhausted and only buffered blocks
	// remain.
	stateDraining

	// stateClosed is terminal.
	stateClosed
)

// Stream lazily decodes the events of an SSE response body into values of
// type T. The body is only read when the caller asks for an item that is
// not already buffered.
//
// Next returns, in order:
//   - a decoded T and a nil error,
//   - the zero T and a *DecodeError, after which the stream continues,
//   - the zero T and a *TransportError or *EncodingError, after which the
//     stream is closed,
//   - the zero T and io.EOF once the stream has ended.
//
// The Stream owns the body and closes it exactly once: when the stream
// ends, when a terminal error is returned or when Close is called.
//
// A Stream is not safe for concurrent use.
type Stream[T any] struct {
	body   io.ReadCloser
	framer *Framer
	opts   *options

	readBuf []byte
	state   state

	// eof and pending record how the last read ended. They are acted on
	// once the blocks already buffered have been handed out; pending is
	// always a terminal error.
	eof     bool
	pending error

	bodyClosed bool
	closeErr   error
}

// NewStream returns a Stream reading from body.
func NewStream[T any](body io.ReadCloser, opts ...Option) *Stream[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Stream[T]{
		body:    body,
		framer:  NewFramer(),
		opts:    o,
		readBuf: make([]byte, o.readSize),
		state:   stateAwaitingInput,
	}
}

// Next returns the next item of the stream. See Stream for the possible
// results.
func (s *Stream[T]) Next() (T, error) {
	var zero T

	for {
		switch s.state {
		case stateClosed:
			return zero, io.EOF

		case stateHasEvent, stateDraining:
			v, ok, err := s.nextBuffered()
			if ok {
				return v, err
			}

			if s.state == stateHasEvent {
				s.state = stateAwaitingInput
				continue
			}

			if err := s.finish(); err != nil {
				return zero, err
			}
			return zero, io.EOF

		case stateAwaitingInput:
			if s.pending != nil {
				err := s.pending
				s.pending = nil
				s.terminate(err)
				return zero, err
			}

			if s.eof {
				s.state = stateDraining
				continue
			}

			if s.framer.Buffered() > s.opts.maxEventSize {
				err := &TransportError{Err: ErrEventTooLarge}
				s.terminate(err)
				return zero, err
			}

			s.fill()
		}
	}
}

// All returns an iterator over the remaining items of the stream. The
// stream is closed when the iteration stops, including on break.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer s.Close()

		for {
			v, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(v, err) {
				return
			}
		}
	}
}

// Close ends the stream and releases the body. It is safe to call more
// than once; later calls return the result of the first.
func (s *Stream[T]) Close() error {
	s.state = stateClosed
	return s.closeBody()
}

// nextBuffered produces an item from an already buffered block. It reports
// false when no buffered block yields an item.
func (s *Stream[T]) nextBuffered() (T, bool, error) {
	var zero T

	for {
		block, ok := s.framer.Next()
		if !ok {
			return zero, false, nil
		}

		payload, ok := s.opts.extract(block)
		if !ok {
			continue
		}

		v, err := Decode[T](payload)
		s.observe(payload, err)

		if err != nil {
			s.opts.logger.Warn("sse: undecodable event",
				"error", err,
				"payload", utils.Truncate(payload, 256),
			)
		}

		return v, true, err
	}
}

// fill performs a single body read. Errors are recorded in pending and
// surfaced after the blocks that arrived before them.
func (s *Stream[T]) fill() {
	n, err := s.body.Read(s.readBuf)

	if n > 0 {
		chunk := s.readBuf[:n]
		s.teeChunk(chunk)

		if werr := s.framer.Write(chunk); werr != nil {
			s.pending = werr
			s.state = stateHasEvent
			return
		}
		s.state = stateHasEvent
	}

	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		s.eof = true
	default:
		s.pending = &TransportError{Err: err}
	}
}

// finish handles the end of the body once every buffered block is used.
func (s *Stream[T]) finish() error {
	tail, err := s.framer.Finish()
	if tail != "" {
		s.opts.logger.Debug("sse: discarding undelimited trailing data",
			"bytes", len(tail),
		)
	}

	if err != nil {
		s.terminate(err)
		return err
	}

	s.state = stateClosed
	_ = s.closeBody()
	return nil
}

// terminate closes the stream after a terminal error.
func (s *Stream[T]) terminate(err error) {
	s.observe("", err)
	s.state = stateClosed
	_ = s.closeBody()
}

func (s *Stream[T]) observe(payload string, err error) {
	if s.opts.observer != nil {
		s.opts.observer(payload, err)
	}
}

func (s *Stream[T]) teeChunk(chunk []byte) {
	if s.opts.tee == nil {
		return
	}
	if _, err := s.opts.tee.Write(chunk); err != nil {
		s.opts.logger.Warn("sse: detaching tee writer", "error", err)
		s.opts.tee = nil
	}
}

func (s *Stream[T]) closeBody() error {
	if s.bodyClosed {
		return s.closeErr
	}
	s.bodyClosed = true
	if s.body != nil {
		s.closeErr = s.body.Close()
	}
	return s.closeErr
}
