package pipeline

import (
	"runtime"

	"github.com/ygrebnov/errorc"

	"github.com/tdfio/ordermr/metrics"
)

// config holds Dispatcher configuration, assembled from functional Options.
type config struct {
	// InputBufferSize is C_in, the FIFO capacity feeding mapper workers.
	// Default: runtime.NumCPU() + 1.
	InputBufferSize uint

	// MapperWorkers is W, the number of concurrent mapper goroutines.
	// Default: runtime.NumCPU().
	MapperWorkers uint

	// OrderedQueueCapacity is C_out, the reorder-buffer depth. Zero means
	// the default of InputBufferSize + MapperWorkers; use
	// WithUnboundedOrderedQueue for no capacity limit at all.
	OrderedQueueCapacity uint
	unboundedOrderedQueue bool

	// Metrics receives throughput and latency instrumentation. Default:
	// metrics.NewNoopProvider().
	Metrics metrics.Provider
}

func defaultConfig() config {
	n := uint(runtime.NumCPU())
	if n == 0 {
		n = 1
	}
	return config{
		InputBufferSize: n + 1,
		MapperWorkers:   n,
		Metrics:         metrics.NewNoopProvider(),
	}
}

// Option configures a Dispatcher. Use New(mapper, reducer, opts...) to
// construct one.
type Option func(*config) error

// WithInputBufferSize sets C_in, the FIFO capacity upstream of the mapper
// workers (must be > 0).
func WithInputBufferSize(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidArgument, errorc.String("", "WithInputBufferSize requires n > 0"))
		}
		cfg.InputBufferSize = n
		return nil
	}
}

// WithMapperWorkers sets W, the number of concurrent mapper goroutines
// (must be > 0).
func WithMapperWorkers(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidArgument, errorc.String("", "WithMapperWorkers requires n > 0"))
		}
		cfg.MapperWorkers = n
		return nil
	}
}

// WithOrderedQueueCapacity sets C_out, the reorder-buffer depth (must be > 0).
// The queue may still transiently hold one more item than this via the
// small-index admission override (see orderedQueue.admitLocked).
func WithOrderedQueueCapacity(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidArgument, errorc.String("", "WithOrderedQueueCapacity requires n > 0"))
		}
		cfg.OrderedQueueCapacity = n
		cfg.unboundedOrderedQueue = false
		return nil
	}
}

// WithUnboundedOrderedQueue removes the reorder-buffer capacity limit
// entirely. Mapper workers then never block on ordered-queue admission, at
// the cost of unbounded memory under sustained out-of-order slippage.
func WithUnboundedOrderedQueue() Option {
	return func(cfg *config) error {
		cfg.unboundedOrderedQueue = true
		return nil
	}
}

// WithMetrics wires a metrics.Provider that records submission, mapping,
// and reduction counters plus map-latency histograms. Default is a no-op
// provider.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidArgument, errorc.String("", "WithMetrics requires a non-nil Provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
