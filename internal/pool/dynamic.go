package pool

import "sync"

// dynamic wraps sync.Pool so callers depend on the Pool interface rather
// than sync.Pool directly.
type dynamic struct {
	p sync.Pool
}

// NewDynamic returns a Pool that grows and shrinks under GC pressure,
// backed by sync.Pool. newFn constructs a fresh node when the pool is empty.
func NewDynamic(newFn func() interface{}) Pool {
	return &dynamic{p: sync.Pool{New: newFn}}
}

func (d *dynamic) Get() interface{} { return d.p.Get() }

func (d *dynamic) Put(v interface{}) { d.p.Put(v) }
