package pipeline

import (
	"time"

	"github.com/tdfio/ordermr/metrics"
)

// mapEnvelope is the single entry a mapper invocation produces for its
// sequence index, success or failure alike. Every push to the ordered queue
// carries one of these, so the reducer's next-expected-index counter always
// advances: a failed mapper call never leaves a permanent gap.
type mapEnvelope[M any] struct {
	val M
	err error
}

// mapWorker pulls (index, input) pairs off the FIFO, maps them, and pushes
// the resulting envelope onto the ordered queue at the same index. It exits
// once the FIFO reports closed-and-drained.
func (d *Dispatcher[I, M]) mapWorker() {
	defer d.mapperWG.Done()

	for {
		n, item, ok := d.fifo.pop()
		if !ok {
			return
		}

		start := time.Now()
		val, err := d.mapper.Map(item)
		metrics.ObserveSince(d.metrics.mapDuration, start)

		if err != nil {
			d.metrics.mapErrors.Add(1)
			err = newSequenceTaggedError(ErrMapperFailure, err, n)
			d.poison(err)
		} else {
			d.metrics.mapped.Add(1)
		}

		// The ordered queue only closes after mapperWG is fully drained
		// (see lifecycle.go), so this push cannot observe ErrPushAfterClose
		// in well-formed use.
		_ = d.orderedQueue.push(n, mapEnvelope[M]{val: val, err: err})
	}
}

// reduceWorker pulls envelopes off the ordered queue in strict index order
// and feeds successful ones to the reducer. A mapper failure for an index
// is surfaced without ever calling Reduce for it; a reducer failure poisons
// the dispatcher the same way a mapper failure does. Either way the worker
// keeps draining already-queued envelopes rather than stopping early, so no
// in-flight work is cancelled.
func (d *Dispatcher[I, M]) reduceWorker() {
	defer d.reducerWG.Done()

	for {
		n, env, ok := d.orderedQueue.pop()
		if !ok {
			return
		}
		d.metrics.inflight.Add(-1)

		if env.err != nil {
			// Already tagged and recorded by the mapper worker that produced it.
			continue
		}

		if err := d.reducer.Reduce(env.val); err != nil {
			d.metrics.reduceErrors.Add(1)
			d.poison(newSequenceTaggedError(ErrReducerFailure, err, n))
			continue
		}
		d.metrics.reduced.Add(1)
	}
}
