package pool

import "testing"

type scratchNode struct {
	n uint64
}

func TestDynamic_GetPutReuse(t *testing.T) {
	var created int
	p := NewDynamic(func() interface{} {
		created++
		return &scratchNode{}
	})

	a := p.Get().(*scratchNode)
	a.n = 7
	p.Put(a)

	b := p.Get().(*scratchNode)
	if b != a {
		t.Fatalf("expected Get to return the recycled node")
	}
	if created != 1 {
		t.Fatalf("expected exactly one allocation, got %d", created)
	}
}

func TestDynamic_GetWithoutPutAllocates(t *testing.T) {
	var created int
	p := NewDynamic(func() interface{} {
		created++
		return &scratchNode{}
	})

	_ = p.Get().(*scratchNode)
	_ = p.Get().(*scratchNode)

	if created != 2 {
		t.Fatalf("expected two allocations when nothing is returned, got %d", created)
	}
}
