// Package recorder captures every item an SSE stream produces and hands it
// to a worker pool for storage and publishing.
package recorder

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/genai/pkg/eventstream"
	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/logger"
	"github.com/papercomputeco/genai/pkg/sse"
	"github.com/papercomputeco/genai/pkg/storage"
	"github.com/papercomputeco/genai/recorder/worker"
)

// Enqueuer accepts jobs without blocking. *worker.Pool implements it.
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// Recorder creates recording sessions that feed a shared queue.
type Recorder struct {
	queue   Enqueuer
	logger  *slog.Logger
	now     func() time.Time
	dropped atomic.Int64
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger used to report dropped items.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = l
	}
}

// New creates a Recorder enqueuing into queue.
func New(queue Enqueuer, opts ...Option) *Recorder {
	r := &Recorder{
		queue:  queue,
		logger: logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dropped returns how many items could not be queued.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// NewSession starts a session with a fresh id.
func (r *Recorder) NewSession(provider, model string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Provider: provider,
		Model:    model,
		rec:      r,
	}
}

func (r *Recorder) enqueue(job worker.Job) {
	if r.queue.Enqueue(job) {
		return
	}
	r.dropped.Add(1)

	attrs := []any{"dropped", r.dropped.Load()}
	if job.Record != nil {
		attrs = append(attrs, "session_id", job.Record.SessionID, "sequence", job.Record.Sequence)
	}
	r.logger.Warn("recorder: queue full, item not recorded", attrs...)
}

// Session records the items of the streams of one conversation. Items get
// consecutive sequence numbers across all streams of the session.
type Session struct {
	ID       string
	Provider string
	Model    string

	rec *Recorder

	mu  sync.Mutex
	seq int
}

// Observer returns an sse.Observer that records each item. Pass it with
// sse.WithObserver.
func (s *Session) Observer() sse.Observer {
	return func(payload string, err error) {
		s.record(payload, err)
	}
}

// StreamOption returns sse.WithObserver(s.Observer()).
func (s *Session) StreamOption() sse.Option {
	return sse.WithObserver(s.Observer())
}

func (s *Session) record(payload string, err error) {
	s.mu.Lock()
	seq := s.seq
	s.seq++
	s.mu.Unlock()

	record := &storage.Record{
		SessionID:  s.ID,
		Sequence:   seq,
		Provider:   s.Provider,
		Model:      s.Model,
		Kind:       Classify(err),
		Payload:    payload,
		RecordedAt: s.rec.now().UTC(),
	}
	if err != nil {
		record.Error = err.Error()
	}

	s.rec.enqueue(worker.Job{Record: record})
}

// CompleteTurn queues a turn event for the session.
func (s *Session) CompleteTurn(turn llm.ConversationTurn, startedAt time.Time) {
	event := eventstream.NewTurnCompletedEvent(s.ID, turn, startedAt.UTC(), s.rec.now().UTC())
	s.rec.enqueue(worker.Job{Turn: event})
}

// Records returns the number of items recorded so far.
func (s *Session) Records() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Classify maps a stream error to the kind it is stored as.
func Classify(err error) storage.Kind {
	var (
		decodeErr   *sse.DecodeError
		encodingErr *sse.EncodingError
	)
	switch {
	case err == nil:
		return storage.KindEvent
	case errors.As(err, &decodeErr):
		return storage.KindDecodeError
	case errors.As(err, &encodingErr):
		return storage.KindEncodingError
	default:
		return storage.KindTransportError
	}
}
