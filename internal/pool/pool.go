// Package pool provides small object-recycling pools used internally by the
// bounded containers to avoid allocating a wrapper node on every push/pop at
// high submission rates.
package pool

// Pool hands out and reclaims interchangeable node wrappers.
type Pool interface {
	// Get returns a node, possibly recycled.
	Get() interface{}

	// Put returns a node to the pool for reuse.
	Put(interface{})
}
