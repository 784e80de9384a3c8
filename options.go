package spatialhash

import (
	"log/slog"

	"github.com/hupe1980/spatialhash/internal/compress"
	"github.com/hupe1980/spatialhash/resource"
)

// Compression selects how snapshots are compressed.
type Compression = compress.Type

const (
	// CompressionNone writes snapshots uncompressed.
	CompressionNone = compress.None
	// CompressionLZ4 favours decode speed.
	CompressionLZ4 = compress.LZ4
	// CompressionZSTD favours size.
	CompressionZSTD = compress.ZSTD
)

type options struct {
	capacity         int
	logger           *Logger
	metricsCollector MetricsCollector
	resources        *resource.Controller
	compression      Compression
}

// Option configures New.
type Option func(*options)

// WithCapacity sets the number of slots. Defaults to Capacity (4410).
// The capacity is fixed for the lifetime of the table.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger configures structured logging.
// Probe traces are emitted at debug level. Pass nil to disable logging.
//
//	logger := spatialhash.NewTextLogger(slog.LevelDebug)
//	t, _ := spatialhash.New(spatialhash.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel installs a text logger at level.
// Convenience for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector. Pass nil to disable.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController charges the slot arena against rc's memory budget
// and throttles snapshot I/O through it.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithCompression sets the compression used by Save and WriteTo.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		capacity:         Capacity,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		compression:      CompressionNone,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
