package quell_go

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quell/quell-go/sched"
)

const eventuallyTimeout = 2 * time.Second

// collector gathers callback output across goroutines.
type collector[T any] struct {
	mu    sync.Mutex
	items []T
}

func (c *collector[T]) add(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, v)
}

func (c *collector[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *collector[T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func TestDebounceStream_emits_last_of_burst(t *testing.T) {
	emitted := &collector[string]{}

	s := NewDebounceStream(100*time.Millisecond, emitted.add)
	s.Start()
	defer s.Stop()

	s.Submit("a")
	s.Submit("b")
	s.Submit("c")

	assert.Eventually(t, func() bool {
		return emitted.len() == 1
	}, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, []string{"c"}, emitted.snapshot())

	// a new burst is independent of the previous one
	s.Submit("d")

	assert.Eventually(t, func() bool {
		return emitted.len() == 2
	}, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, []string{"c", "d"}, emitted.snapshot())
}

func TestDebounceStream_waits_for_quiet(t *testing.T) {
	emitted := &collector[int]{}

	s := NewDebounceStream(150*time.Millisecond, emitted.add)
	s.Start()
	defer s.Stop()

	// a noisy burst: every submission reschedules the settle check
	for i := range 5 {
		s.Submit(i)
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return emitted.len() == 1
	}, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, []int{4}, emitted.snapshot())

	// the stale checks for 0..3 never produce a second emission
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []int{4}, emitted.snapshot())
}

func TestThrottleStream_windows(t *testing.T) {
	emitted := &collector[string]{}
	dropped := &collector[string]{}

	s := NewThrottleStream(250*time.Millisecond, emitted.add,
		WithOnDrop[string](dropped.add),
	)
	s.Start()
	defer s.Stop()

	s.Submit("x1")

	assert.Eventually(t, func() bool {
		return emitted.len() == 1
	}, eventuallyTimeout, time.Millisecond)

	s.Submit("x2")

	assert.Eventually(t, func() bool {
		return dropped.len() == 1
	}, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, []string{"x1"}, emitted.snapshot())
	assert.Equal(t, []string{"x2"}, dropped.snapshot())

	// past the window the next value passes through again
	time.Sleep(350 * time.Millisecond)
	s.Submit("x3")

	assert.Eventually(t, func() bool {
		return emitted.len() == 2
	}, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, []string{"x1", "x3"}, emitted.snapshot())
}

type refuseAll struct{}

func (refuseAll) Allow() bool { return false }

func TestStream_gate_refusal_goes_to_onDrop(t *testing.T) {
	emitted := &collector[string]{}
	dropped := &collector[string]{}

	s := NewThrottleStream(10*time.Millisecond, emitted.add,
		WithGate[string](refuseAll{}),
		WithOnDrop[string](dropped.add),
	)
	s.Start()
	defer s.Stop()

	s.Submit("a")
	s.Submit("b")

	assert.Eventually(t, func() bool {
		return dropped.len() == 2
	}, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, 0, emitted.len())
	assert.Equal(t, []string{"a", "b"}, dropped.snapshot())
}

func TestStream_start_stop_idempotent(t *testing.T) {
	emitted := &collector[string]{}

	s := NewDebounceStream(10*time.Millisecond, emitted.add)

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	// restart and make sure the stream still works
	s.Start()
	defer s.Stop()

	s.Submit("after-restart")

	assert.Eventually(t, func() bool {
		return emitted.len() == 1
	}, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, []string{"after-restart"}, emitted.snapshot())
}

func TestStream_submit_before_start_is_buffered(t *testing.T) {
	emitted := &collector[string]{}

	s := NewDebounceStream(10*time.Millisecond, emitted.add)

	s.Submit("early")
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return emitted.len() == 1
	}, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, []string{"early"}, emitted.snapshot())
}

func TestStream_timer_fired_after_stop_is_discarded(t *testing.T) {
	clock := sched.NewManual()
	emitted := &collector[string]{}
	dropped := &collector[string]{}

	s := NewThrottleStream(100*time.Millisecond, emitted.add,
		WithScheduler[string](clock),
		WithOnDrop[string](dropped.add),
	)
	s.Start()

	s.Submit("x1")

	// the leading edge emits and a reopen lands with the scheduler
	assert.Eventually(t, func() bool {
		return emitted.len() == 1 && clock.Pending() == 1
	}, eventuallyTimeout, time.Millisecond)

	s.Stop()

	// the reopen fires against a stopped stream and is discarded
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 0, clock.Pending())

	// restart: the limiter never saw the reopen, so it is still closed
	s.Start()
	defer s.Stop()

	s.Submit("x2")

	assert.Eventually(t, func() bool {
		return dropped.len() == 1
	}, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, []string{"x1"}, emitted.snapshot())
	assert.Equal(t, []string{"x2"}, dropped.snapshot())
}

func TestStream_concurrent_submitters(t *testing.T) {
	emitted := &collector[int]{}

	s := NewThrottleStream(time.Millisecond, emitted.add)
	s.Start()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				s.Submit(g*100 + i)
			}
		}()
	}
	wg.Wait()
	s.Stop()

	// at least the very first submission made it through an open window
	assert.GreaterOrEqual(t, emitted.len(), 1)
	assert.LessOrEqual(t, emitted.len(), 400)
}
