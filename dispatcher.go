package pipeline

import (
	"sync"
	"sync/atomic"
)

// Dispatcher is an ordered parallel map-reduce pipeline: Submit feeds a
// bounded FIFO drained by W mapper goroutines, whose outputs are reassembled
// into strict submission order by a bounded ordered queue before a single
// reducer goroutine consumes them.
//
// A Dispatcher must be constructed with New and closed with Close. It is
// safe for concurrent Submit calls.
type Dispatcher[I, M any] struct {
	mapper  Mapper[I, M]
	reducer Reducer[M]
	metrics instruments

	fifo         *boundedFIFO[I]
	orderedQueue *orderedQueue[mapEnvelope[M]]

	mapperWG  sync.WaitGroup
	reducerWG sync.WaitGroup

	lifecycle *lifecycleCoordinator

	poisoned atomic.Bool
	firstErr atomic.Pointer[error]
}

// New constructs a Dispatcher with W mapper workers and a single reducer
// goroutine, already running. Both mapper and reducer must be non-nil.
func New[I, M any](mapper Mapper[I, M], reducer Reducer[M], opts ...Option) (*Dispatcher[I, M], error) {
	if mapper == nil || reducer == nil {
		return nil, ErrInvalidArgument
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	oqCapacity := int(cfg.OrderedQueueCapacity)
	if cfg.unboundedOrderedQueue {
		oqCapacity = 0
	} else if oqCapacity == 0 {
		oqCapacity = int(cfg.InputBufferSize + cfg.MapperWorkers)
	}

	d := &Dispatcher[I, M]{
		mapper:       mapper,
		reducer:      reducer,
		metrics:      newInstruments(cfg.Metrics),
		fifo:         newBoundedFIFO[I](int(cfg.InputBufferSize)),
		orderedQueue: newOrderedQueue[mapEnvelope[M]](oqCapacity),
	}

	d.mapperWG.Add(int(cfg.MapperWorkers))
	for i := uint(0); i < cfg.MapperWorkers; i++ {
		go d.mapWorker()
	}

	d.reducerWG.Add(1)
	go d.reduceWorker()

	d.lifecycle = newLifecycleCoordinator(
		d.fifo.close,
		d.mapperWG.Wait,
		d.orderedQueue.close,
		d.reducerWG.Wait,
		d.Err,
	)

	return d, nil
}

// Submit assigns item the next sequence index and enqueues it for mapping,
// blocking while the input FIFO is full. It returns ErrPoisoned if a prior
// mapper or reducer failure has poisoned the pipeline, and
// ErrSubmitAfterClose if Close has already been called.
func (d *Dispatcher[I, M]) Submit(item I) (uint64, error) {
	if d.poisoned.Load() {
		return 0, ErrPoisoned
	}

	n, err := d.fifo.pushSequenced(item)
	if err != nil {
		return 0, ErrSubmitAfterClose
	}

	d.metrics.submitted.Add(1)
	d.metrics.inflight.Add(1)
	return n, nil
}

// Close stops accepting new submissions, waits for every already-submitted
// item to finish mapping and reducing, and returns the first mapper or
// reducer error encountered, if any. Close is idempotent and safe for
// concurrent use; all calls observe the same outcome.
func (d *Dispatcher[I, M]) Close() error {
	return d.lifecycle.close()
}

// poison records err as the pipeline's terminal error, if it is the first
// one, and marks the dispatcher poisoned. Already-dispatched work still
// drains to completion; poisoning only blocks future Submit calls.
func (d *Dispatcher[I, M]) poison(err error) {
	if err == nil {
		return
	}
	if d.firstErr.CompareAndSwap(nil, &err) {
		d.poisoned.Store(true)
	}
}

// Err returns the first mapper or reducer error the pipeline has recorded,
// or nil if none has occurred yet. Safe to call at any time.
func (d *Dispatcher[I, M]) Err() error {
	p := d.firstErr.Load()
	if p == nil {
		return nil
	}
	return *p
}
