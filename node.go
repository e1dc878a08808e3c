package pipeline

import "github.com/tdfio/ordermr/internal/pool"

// node pairs a sequence index with a payload. Both the FIFO and the ordered
// queue move items around as *node[T]; recycling them through a pool avoids
// an allocation per push/pop at high submission rates.
type node[T any] struct {
	n uint64
	v T
}

// nodePool recycles *node[T] wrappers through an internal/pool.Pool.
type nodePool[T any] struct {
	p pool.Pool
}

func newNodePool[T any]() *nodePool[T] {
	return &nodePool[T]{p: pool.NewDynamic(func() interface{} { return &node[T]{} })}
}

func (np *nodePool[T]) get(n uint64, v T) *node[T] {
	nd := np.p.Get().(*node[T])
	nd.n = n
	nd.v = v
	return nd
}

func (np *nodePool[T]) put(nd *node[T]) {
	var zero T
	nd.v = zero
	np.p.Put(nd)
}
