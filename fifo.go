package pipeline

import "sync"

// boundedFIFO is a bounded, thread-safe FIFO mailbox of (sequence-index,
// payload) pairs. It owns the sequence counter: the index for a pushed item
// is assigned under the same critical section that inserts it, so a push
// that fails because the FIFO is closed never consumes an index, so the
// k-th successful push is always assigned index k.
//
// All waits re-check their predicate in a loop after wake (the standard
// sync.Cond discipline), and close broadcasts to every waiter, which is how
// lost wakeups are avoided.
type boundedFIFO[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	buf      []*node[T] // ring buffer
	head     int
	count    int
	capacity int

	closed bool
	seq    uint64

	nodes *nodePool[T]
}

func newBoundedFIFO[T any](capacity int) *boundedFIFO[T] {
	f := &boundedFIFO[T]{
		buf:      make([]*node[T], capacity),
		capacity: capacity,
		nodes:    newNodePool[T](),
	}
	f.notEmpty = sync.NewCond(&f.mu)
	f.notFull = sync.NewCond(&f.mu)
	return f
}

// pushSequenced blocks while the FIFO is full and open, assigns the next
// sequence index, and appends (index, item). It returns ErrPushAfterClose
// without consuming an index if the FIFO has been closed.
func (f *boundedFIFO[T]) pushSequenced(item T) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for f.count == f.capacity && !f.closed {
		f.notFull.Wait()
	}
	if f.closed {
		return 0, ErrPushAfterClose
	}

	n := f.seq
	f.seq++

	nd := f.nodes.get(n, item)
	tail := (f.head + f.count) % f.capacity
	f.buf[tail] = nd
	f.count++

	f.notEmpty.Signal()
	return n, nil
}

// pop blocks while the FIFO is empty and open. It returns ok == false once
// the FIFO is closed and drained.
func (f *boundedFIFO[T]) pop() (n uint64, item T, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for f.count == 0 && !f.closed {
		f.notEmpty.Wait()
	}
	if f.count == 0 {
		return 0, item, false
	}

	nd := f.buf[f.head]
	f.buf[f.head] = nil
	f.head = (f.head + 1) % f.capacity
	f.count--

	n, item = nd.n, nd.v
	f.nodes.put(nd)

	f.notFull.Signal()
	return n, item, true
}

// close marks the FIFO closed and wakes every waiter. Idempotent. Does not
// drain or drop any buffered item; drainage is the caller's job via pop.
func (f *boundedFIFO[T]) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.notEmpty.Broadcast()
	f.notFull.Broadcast()
}

func (f *boundedFIFO[T]) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
