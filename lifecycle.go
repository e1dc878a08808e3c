package pipeline

import "sync"

// lifecycleCoordinator encapsulates the Dispatcher shutdown sequence.
// It doesn't own the containers or goroutines, it just runs their close/wait
// steps in a deterministic order, exactly once.
//
// The order matters: the FIFO must close and drain before the ordered queue
// closes, otherwise a mapper worker blocked on orderedQueue.push could be
// woken by close() while its sibling mapper workers are still producing
// entries the reducer has not yet consumed.
type lifecycleCoordinator struct {
	closeFIFO         func()
	waitMappers       func()
	closeOrderedQueue func()
	waitReducer       func()
	err               func() error

	once sync.Once
	res  error
}

func newLifecycleCoordinator(
	closeFIFO func(),
	waitMappers func(),
	closeOrderedQueue func(),
	waitReducer func(),
	err func() error,
) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		closeFIFO:         closeFIFO,
		waitMappers:       waitMappers,
		closeOrderedQueue: closeOrderedQueue,
		waitReducer:       waitReducer,
		err:               err,
	}
}

// close executes the shutdown sequence exactly once and returns the
// pipeline's first recorded error, regardless of how many goroutines call
// it concurrently:
//  1. close the input FIFO, so no further pushSequenced calls succeed
//  2. wait for every mapper worker to drain the FIFO and exit
//  3. close the ordered queue, now safe since no mapper can still be pushing
//  4. wait for the reducer worker to drain the ordered queue and exit
func (lc *lifecycleCoordinator) close() error {
	lc.once.Do(func() {
		lc.closeFIFO()
		lc.waitMappers()
		lc.closeOrderedQueue()
		lc.waitReducer()
		lc.res = lc.err()
	})
	return lc.res
}
