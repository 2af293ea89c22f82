package recorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercomputeco/genai/pkg/config"
	"github.com/papercomputeco/genai/pkg/eventstream"
	"github.com/papercomputeco/genai/pkg/eventstream/kafka"
	"github.com/papercomputeco/genai/pkg/eventstream/nop"
	"github.com/papercomputeco/genai/pkg/logger"
	"github.com/papercomputeco/genai/pkg/storage"
	"github.com/papercomputeco/genai/pkg/storage/inmemory"
	"github.com/papercomputeco/genai/pkg/storage/postgres"
	"github.com/papercomputeco/genai/pkg/storage/sqlite"
	"github.com/papercomputeco/genai/recorder/worker"
)

// Storage driver names.
const (
	DriverInMemory = "inmemory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Publisher names.
const (
	PublisherNop   = "nop"
	PublisherKafka = "kafka"
)

// OpenDriver opens the storage driver selected by cfg.
func OpenDriver(ctx context.Context, cfg config.StorageConfig, defaultSQLitePath string) (storage.Driver, error) {
	switch cfg.Driver {
	case DriverInMemory:
		return inmemory.NewDriver(), nil

	case DriverSQLite, "":
		path := cfg.SQLitePath
		if path == "" {
			path = defaultSQLitePath
		}
		if path == "" {
			return nil, errors.New("sqlite storage requires a path")
		}
		return sqlite.NewSQLiteDriver(ctx, path)

	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires a connection string")
		}
		return postgres.NewDriver(ctx, cfg.PostgresDSN)

	default:
		return nil, fmt.Errorf("unknown storage driver %q (supported: %s, %s, %s)",
			cfg.Driver, DriverInMemory, DriverSQLite, DriverPostgres)
	}
}

// OpenPublisher creates the publisher selected by cfg.
func OpenPublisher(cfg config.EventStreamConfig) (eventstream.Publisher, error) {
	switch cfg.Publisher {
	case PublisherNop, "":
		return nop.NewPublisher(), nil

	case PublisherKafka:
		return kafka.NewPublisher(kafka.Config{
			Brokers:  kafka.ParseBrokers(cfg.Brokers),
			Topic:    cfg.Topic,
			ClientID: cfg.ClientID,
		})

	default:
		return nil, fmt.Errorf("unknown event publisher %q (supported: %s, %s)",
			cfg.Publisher, PublisherNop, PublisherKafka)
	}
}

// Pipeline is a Recorder together with the resources it owns.
type Pipeline struct {
	*Recorder

	Driver    storage.Driver
	Publisher eventstream.Publisher
	pool      *worker.Pool
}

// Open opens storage and publisher, starts a worker pool and returns a
// Recorder feeding it. Close the Pipeline to drain and release everything.
func Open(ctx context.Context, cfg Config) (*Pipeline, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	driver, err := OpenDriver(ctx, cfg.Storage, cfg.DefaultSQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	pub, err := OpenPublisher(cfg.EventStream)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("opening event publisher: %w", err)
	}

	pool, err := worker.NewPool(&worker.Config{
		Driver:     driver,
		Publisher:  pub,
		Host:       cfg.Host,
		NumWorkers: cfg.NumWorkers,
		QueueSize:  cfg.QueueSize,
		Logger:     log,
	})
	if err != nil {
		pub.Close()
		driver.Close()
		return nil, err
	}

	log.Debug("recorder started",
		"storage", cfg.Storage.Driver,
		"publisher", cfg.EventStream.Publisher,
	)

	return &Pipeline{
		Recorder:  New(pool, WithLogger(log)),
		Driver:    driver,
		Publisher: pub,
		pool:      pool,
	}, nil
}

// Close drains queued jobs, then closes the publisher and the driver.
func (p *Pipeline) Close() error {
	p.pool.Close()
	return errors.Join(p.Publisher.Close(), p.Driver.Close())
}
