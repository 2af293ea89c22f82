package recorder

import (
	"log/slog"

	"github.com/papercomputeco/genai/pkg/config"
)

// Config is the recording pipeline configuration.
type Config struct {
	// Storage selects the driver records are stored with.
	Storage config.StorageConfig

	// EventStream selects the publisher records are sent to.
	EventStream config.EventStreamConfig

	// DefaultSQLitePath is used when the sqlite driver has no path configured.
	DefaultSQLitePath string

	// Host is reported as the source of published events.
	Host string

	// NumWorkers and QueueSize size the worker pool. Zero uses its defaults.
	NumWorkers uint
	QueueSize  uint

	Logger *slog.Logger
}
