package pipeline

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scenario 1: identity/trivial.
func TestDispatcher_IdentityInOrder(t *testing.T) {
	const n = 1000

	var next int32
	reducer := ReducerFunc[int](func(v int) error {
		want := int(atomic.AddInt32(&next, 1)) - 1
		require.Equal(t, want, v, "reducer observed values out of submission order")
		return nil
	})

	d, err := New[int, int](MapperFunc[int, int](func(v int) (int, error) { return v, nil }), reducer,
		WithMapperWorkers(4), WithInputBufferSize(3))
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		_, err := d.Submit(i)
		require.NoError(t, err)
	}
	require.NoError(t, d.Close())
	require.EqualValues(t, n, next)
}

// scenario 2: jittered ordering, same property must hold despite
// randomized mapper latency, with W >= 2 (P7's no-starvation requirement).
func TestDispatcher_JitteredOrdering(t *testing.T) {
	const n = 1000
	rng := rand.New(rand.NewSource(1))

	mapper := MapperFunc[int, int](func(v int) (int, error) {
		time.Sleep(time.Duration(rng.Intn(5)) * time.Millisecond)
		return v, nil
	})

	var mu sync.Mutex
	var got []int
	reducer := ReducerFunc[int](func(v int) error {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		return nil
	})

	d, err := New[int, int](mapper, reducer, WithMapperWorkers(4), WithInputBufferSize(3))
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		_, err := d.Submit(i)
		require.NoError(t, err)
	}
	require.NoError(t, d.Close())

	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, i, v, "order violated at position %d", i)
	}
}

// scenario 3: transform, mapper and reducer types differ from the input type.
func TestDispatcher_Transform(t *testing.T) {
	var sink []byte
	mapper := MapperFunc[int, byte](func(v int) (byte, error) { return byte(v % 256), nil })
	reducer := ReducerFunc[byte](func(b byte) error { sink = append(sink, b); return nil })

	d, err := New[int, byte](mapper, reducer, WithMapperWorkers(8))
	require.NoError(t, err)

	for i := 0; i < 256; i++ {
		_, err := d.Submit(i)
		require.NoError(t, err)
	}
	require.NoError(t, d.Close())

	want := make([]byte, 256)
	for i := range want {
		want[i] = byte(i)
	}
	require.Equal(t, want, sink)
}

// scenario 4: backpressure, with W=1, C_in=1, and a slow reducer, Submit
// eventually blocks: at least one gap between consecutive submits reaches
// half the reducer's per-item delay.
func TestDispatcher_Backpressure(t *testing.T) {
	const delay = 10 * time.Millisecond

	mapper := MapperFunc[int, int](func(v int) (int, error) { return v, nil })
	reducer := ReducerFunc[int](func(int) error { time.Sleep(delay); return nil })

	d, err := New[int, int](mapper, reducer, WithMapperWorkers(1), WithInputBufferSize(1), WithOrderedQueueCapacity(1))
	require.NoError(t, err)

	const total = 20
	timestamps := make([]time.Time, total)
	for i := 0; i < total; i++ {
		_, err := d.Submit(i)
		require.NoError(t, err)
		timestamps[i] = time.Now()
	}
	require.NoError(t, d.Close())

	var sawBlocked bool
	for i := 1; i < total; i++ {
		if timestamps[i].Sub(timestamps[i-1]) >= delay/2 {
			sawBlocked = true
			break
		}
	}
	require.True(t, sawBlocked, "Submit never observably blocked behind the slow reducer")
}

// scenario 5: shutdown with pending work, Close blocks until every
// submitted item has been reduced, in order.
func TestDispatcher_CloseDrainsPendingWork(t *testing.T) {
	const n = 100

	var count int32
	var mu sync.Mutex
	var got []int
	reducer := ReducerFunc[int](func(v int) error {
		atomic.AddInt32(&count, 1)
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		return nil
	})

	d, err := New[int, int](MapperFunc[int, int](func(v int) (int, error) { return v, nil }), reducer,
		WithMapperWorkers(4))
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		_, err := d.Submit(i)
		require.NoError(t, err)
	}
	require.NoError(t, d.Close())

	require.EqualValues(t, n, count)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

// scenario 6: post-close rejection.
func TestDispatcher_PostCloseRejection(t *testing.T) {
	d, err := New[int, int](MapperFunc[int, int](func(v int) (int, error) { return v, nil }),
		ReducerFunc[int](func(int) error { return nil }))
	require.NoError(t, err)

	_, err = d.Submit(1)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = d.Submit(2)
	require.ErrorIs(t, err, ErrSubmitAfterClose)

	// A second Close is idempotent and returns the same outcome.
	require.NoError(t, d.Close())
}

// P2/P3: every submitted input is reduced exactly once, and Close only
// returns once all of them have been.
func TestDispatcher_ExactlyOnceAndCompleteness(t *testing.T) {
	const n = 500

	seen := make(map[int]int)
	var mu sync.Mutex
	reducer := ReducerFunc[int](func(v int) error {
		mu.Lock()
		seen[v]++
		mu.Unlock()
		return nil
	})

	d, err := New[int, int](MapperFunc[int, int](func(v int) (int, error) { return v, nil }), reducer,
		WithMapperWorkers(6), WithInputBufferSize(5))
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		_, err := d.Submit(i)
		require.NoError(t, err)
	}
	require.NoError(t, d.Close())

	require.Len(t, seen, n)
	for i := 0; i < n; i++ {
		require.Equal(t, 1, seen[i], "input %d was reduced %d times", i, seen[i])
	}
}

// A mapper failure poisons the dispatcher, preventing further submissions,
// while already-dispatched work still drains and the failure is tagged
// with its sequence index.
func TestDispatcher_MapperFailurePoisonsButDrains(t *testing.T) {
	boom := errors.New("boom")

	var reduced int32
	mapper := MapperFunc[int, int](func(v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	reducer := ReducerFunc[int](func(int) error { atomic.AddInt32(&reduced, 1); return nil })

	d, err := New[int, int](mapper, reducer, WithMapperWorkers(2))
	require.NoError(t, err)

	var submitted int32
	for i := 0; i < 5; i++ {
		if _, err := d.Submit(i); err != nil {
			require.ErrorIs(t, err, ErrPoisoned)
			break
		}
		submitted++
	}

	err = d.Close()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMapperFailure)

	idx, ok := ExtractSequenceIndex(err)
	require.True(t, ok)
	require.EqualValues(t, 2, idx)

	// Every other submitted index still reached the reducer.
	require.EqualValues(t, submitted-1, reduced)
}

// A reducer failure poisons the dispatcher the same way a mapper failure
// does, and Close surfaces the first such error.
func TestDispatcher_ReducerFailurePoisons(t *testing.T) {
	boom := errors.New("boom")

	mapper := MapperFunc[int, int](func(v int) (int, error) { return v, nil })
	reducer := ReducerFunc[int](func(v int) error {
		if v == 3 {
			return boom
		}
		return nil
	})

	d, err := New[int, int](mapper, reducer, WithMapperWorkers(2))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		if _, err := d.Submit(i); err != nil {
			break
		}
	}

	err = d.Close()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrReducerFailure)
}

func TestNew_RejectsNilCapabilities(t *testing.T) {
	_, err := New[int, int](nil, ReducerFunc[int](func(int) error { return nil }))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New[int, int](MapperFunc[int, int](func(v int) (int, error) { return v, nil }), nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRunSlice_SubmitsCloseAndPropagatesError(t *testing.T) {
	var sum int64
	mapper := MapperFunc[int, int](func(v int) (int, error) { return v * 2, nil })
	reducer := ReducerFunc[int](func(v int) error { atomic.AddInt64(&sum, int64(v)); return nil })

	inputs := make([]int, 10)
	for i := range inputs {
		inputs[i] = i
	}

	err := RunSlice[int, int](inputs, mapper, reducer)
	require.NoError(t, err)
	require.EqualValues(t, 90, sum) // 2 * (0+1+...+9)
}

func TestSequenceTaggedError_FormatPlusV(t *testing.T) {
	wrapped := newSequenceTaggedError(ErrMapperFailure, errors.New("bad input"), 7)
	s := fmt.Sprintf("%+v", wrapped)
	require.Contains(t, s, "index=7")
	require.Contains(t, s, "bad input")
}
