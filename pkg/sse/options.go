package sse

import (
	"io"
	"log/slog"

	"github.com/papercomputeco/genai/pkg/logger"
)

const (
	defaultReadSize     = 32 * 1024
	defaultMaxEventSize = 32 * 1024 * 1024
)

// Observer is notified of every item a Stream produces, in order. payload is
// the raw data payload for decoded events and decode errors and is empty for
// terminal errors. err is nil for successfully decoded events.
type Observer func(payload string, err error)

// Option configures a Stream created with NewStream.
type Option func(*options)

type options struct {
	extract      Extractor
	tee          io.Writer
	observer     Observer
	logger       *slog.Logger
	readSize     int
	maxEventSize int
}

func defaultOptions() *options {
	return &options{
		extract:      ExtractData,
		logger:       logger.Nop(),
		readSize:     defaultReadSize,
		maxEventSize: defaultMaxEventSize,
	}
}

// WithJoinedData joins every data line of an event instead of taking the
// first one. See ExtractJoinedData.
func WithJoinedData() Option {
	return func(o *options) {
		o.extract = ExtractJoinedData
	}
}

// WithExtractor overrides how payloads are pulled out of event blocks.
func WithExtractor(e Extractor) Option {
	return func(o *options) {
		if e != nil {
			o.extract = e
		}
	}
}

// WithTee writes every raw byte read from the body to w, verbatim, before it
// is parsed. A failing writer is logged and detached; it never fails the
// stream.
func WithTee(w io.Writer) Option {
	return func(o *options) {
		o.tee = w
	}
}

// WithObserver registers fn to be called for every produced item.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// WithLogger sets the logger used for dropped payloads and discarded tails.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithReadSize sets the size of the buffer handed to each body Read.
func WithReadSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readSize = n
		}
	}
}

// WithMaxEventSize bounds how much undelimited text may be buffered before
// the stream fails with ErrEventTooLarge. Defaults to 32 MiB, which leaves
// room for base64 image payloads.
func WithMaxEventSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEventSize = n
		}
	}
}
