package pipeline

import (
	"container/heap"
	"fmt"
	"sync"
)

// nodeHeap is a container/heap min-heap of *node[T], ordered by sequence
// index. No priority-queue library appears anywhere in this repo's
// ecosystem lineage; container/heap is the idiomatic standard-library
// choice for a handful of in-memory elements ordered by a numeric key (see
// DESIGN.md for why no third-party alternative was reached for instead).
type nodeHeap[T any] []*node[T]

func (h nodeHeap[T]) Len() int            { return len(h) }
func (h nodeHeap[T]) Less(i, j int) bool  { return h[i].n < h[j].n }
func (h nodeHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap[T]) Push(x interface{}) { *h = append(*h, x.(*node[T])) }
func (h *nodeHeap[T]) Pop() interface{} {
	old := *h
	last := len(old) - 1
	item := old[last]
	old[last] = nil
	*h = old[:last]
	return item
}

// orderedQueue is a bounded, thread-safe min-index priority queue that
// releases (index, payload) pairs strictly in increasing-index order. It is
// the centerpiece of the pipeline: it reassembles out-of-order mapper
// completions into submission order before the reducer ever sees them.
//
// capacity <= 0 means unbounded (the dispatcher uses this when the caller
// sets WithUnboundedOrderedQueue).
type orderedQueue[T any] struct {
	mu       sync.Mutex
	canAccept *sync.Cond
	canYield  *sync.Cond

	h        nodeHeap[T]
	capacity int
	k        uint64 // next-expected-index
	closed   bool

	nodes *nodePool[T]
}

func newOrderedQueue[T any](capacity int) *orderedQueue[T] {
	q := &orderedQueue[T]{capacity: capacity, nodes: newNodePool[T]()}
	q.canAccept = sync.NewCond(&q.mu)
	q.canYield = sync.NewCond(&q.mu)
	return q
}

// admitLocked implements the admission rule: accept when there is spare
// capacity, or unconditionally when n would become the new minimum. This
// override prevents a full queue of indices > k from deadlocking the only
// push that could ever unblock it. Must be called with mu held.
func (q *orderedQueue[T]) admitLocked(n uint64) bool {
	if q.capacity <= 0 {
		return true
	}
	if len(q.h) < q.capacity {
		return true
	}
	return len(q.h) > 0 && n < q.h[0].n
}

// canYieldLocked reports whether pop can return immediately: the heap is
// non-empty and its minimum index is the next expected one. This is kept
// distinct from isEmptyLocked, since conflating "nothing to yield yet" with
// "terminally empty" breaks close-time draining when a gap remains.
func (q *orderedQueue[T]) canYieldLocked() bool {
	return len(q.h) > 0 && q.h[0].n == q.k
}

func (q *orderedQueue[T]) isEmptyLocked() bool {
	return len(q.h) == 0
}

// push blocks until admitLocked holds or the queue closes, then inserts
// (n, v). Fails with ErrPushAfterClose post-closure without blocking
// further.
func (q *orderedQueue[T]) push(n uint64, v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.admitLocked(n) && !q.closed {
		q.canAccept.Wait()
	}
	if q.closed {
		return ErrPushAfterClose
	}

	nd := q.nodes.get(n, v)
	heap.Push(&q.h, nd)
	q.canYield.Signal()
	return nil
}

// pop blocks until canYieldLocked holds or the queue is closed and empty.
// On success it asserts the released index equals the next-expected
// counter; a mismatch is an invariant violation and panics, since it
// cannot arise from well-formed use. A minimum index below the counter can
// never become releasable, so pop stops waiting and panics on it too.
func (q *orderedQueue[T]) pop() (n uint64, v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.canYieldLocked() && !(q.closed && q.isEmptyLocked()) {
		if len(q.h) > 0 && q.h[0].n < q.k {
			break
		}
		q.canYield.Wait()
	}
	if q.closed && q.isEmptyLocked() {
		return 0, v, false
	}

	nd := heap.Pop(&q.h).(*node[T])
	if nd.n != q.k {
		panic(fmt.Errorf("%w: released index %d, expected %d", ErrInvariantViolation, nd.n, q.k))
	}
	q.k++

	n, v = nd.n, nd.v
	q.nodes.put(nd)

	q.canAccept.Broadcast()
	return n, v, true
}

// close marks the queue closed and wakes every waiter. Idempotent.
func (q *orderedQueue[T]) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.canAccept.Broadcast()
	q.canYield.Broadcast()
}

func (q *orderedQueue[T]) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
