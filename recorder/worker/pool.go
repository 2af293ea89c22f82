// Package worker provides an asynchronous worker pool for persisting recorded
// stream items with the provided storage.Driver and publishing them with the
// provided eventstream.Publisher.
//
// The pool decouples storage operations from stream consumption so that
// reading a stream never waits on a database or broker.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/genai/pkg/eventstream"
	"github.com/papercomputeco/genai/pkg/eventstream/nop"
	"github.com/papercomputeco/genai/pkg/logger"
	"github.com/papercomputeco/genai/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against. Exactly one
// of Record and Turn is set.
type Job struct {
	Record *storage.Record
	Turn   *eventstream.TurnCompletedEvent
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting records.
	Driver storage.Driver

	// Publisher receives an event per newly stored record and per completed
	// turn. Defaults to a no-op publisher.
	Publisher eventstream.Publisher

	// Host is reported as the source of published events.
	Host string

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Pool processes storage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, errors.New("worker pool requires a storage driver")
	}

	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued", jobAttrs(job)...)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped", jobAttrs(job)...)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Enqueue must not be called after Close.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
		p.wg.Wait()
	})
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("storage worker stopped", "worker_id", id)
}

// processJob stores a record and publishes it if it was new, or publishes a
// completed turn.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	switch {
	case job.Record != nil:
		p.storeRecord(ctx, job.Record)
	case job.Turn != nil:
		if err := p.config.Publisher.PublishTurn(ctx, job.Turn); err != nil {
			p.logger.Error("publishing turn failed",
				"session_id", job.Turn.SessionID,
				"error", err,
			)
		}
	}
}

func (p *Pool) storeRecord(ctx context.Context, record *storage.Record) {
	isNew, err := p.config.Driver.PutRecord(ctx, record)
	if err != nil {
		p.logger.Error("async record storage failed",
			"session_id", record.SessionID,
			"sequence", record.Sequence,
			"error", err,
		)
		return
	}

	p.logger.Debug("record stored",
		"session_id", record.SessionID,
		"sequence", record.Sequence,
		"kind", record.Kind,
		"is_new", isNew,
	)

	if !isNew {
		return
	}

	event := eventstream.NewStreamRecordEvent(*record, p.config.Host)
	if err := p.config.Publisher.PublishRecord(ctx, event); err != nil {
		p.logger.Warn("publishing record failed",
			"session_id", record.SessionID,
			"sequence", record.Sequence,
			"error", err,
		)
	}
}

func jobAttrs(job Job) []any {
	switch {
	case job.Record != nil:
		return []any{
			"session_id", job.Record.SessionID,
			"sequence", job.Record.Sequence,
			"provider", job.Record.Provider,
		}
	case job.Turn != nil:
		return []any{
			"session_id", job.Turn.SessionID,
			"provider", job.Turn.Source.Provider,
		}
	default:
		return nil
	}
}
