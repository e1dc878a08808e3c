// Package pipeline implements an ordered parallel map-reduce pipeline: a
// bounded FIFO feeds W mapper workers, and a bounded ordered queue
// reassembles their out-of-order outputs into strict submission order
// before a single reducer goroutine consumes them.
//
// # Defaults
//
// Unless overridden via Option, a Dispatcher built with New uses:
//   - InputBufferSize:      runtime.NumCPU() + 1
//   - MapperWorkers:        runtime.NumCPU()
//   - OrderedQueueCapacity: InputBufferSize + MapperWorkers
//   - Metrics:              metrics.NewNoopProvider()
//
// # Ordering
//
// Submit assigns each accepted item the next sequence index, starting at 0.
// The reducer observes mapped results in exactly that order, regardless of
// how long any individual mapper call takes relative to the others.
//
// # Lifecycle
//
// A Dispatcher starts its worker goroutines immediately in New; there is no
// separate Start call. Close stops accepting new submissions, waits for
// every already-submitted item to finish mapping and reducing, and returns
// the first mapper or reducer error encountered. Close is idempotent.
//
// # Failure policy
//
// The first mapper or reducer failure poisons the Dispatcher: further
// Submit calls fail with ErrPoisoned. Work already accepted before the
// failure still runs to completion, since poisoning never cancels
// in-flight mapper or reducer calls.
package pipeline
