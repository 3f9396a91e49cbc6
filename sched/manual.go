package sched

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by a virtual clock. Nothing
// fires until Advance moves the clock past an entry's due time; callbacks
// run synchronously inside Advance, in due-time order, with scheduling
// order as the tie-break. A callback may schedule further entries; entries
// that fall due within the same Advance window fire in the same call.
//
// Manual is safe for concurrent use, but the lock is not held while a
// callback runs, so a callback may call Schedule without deadlocking.
// It exists for tests and for simulating timelines such as "three
// submissions 50ms apart".
//
// Usage Example:
//
//	clock := sched.NewManual()
//	l := limit.NewThrottle[string](100 * time.Millisecond)
//	_, _, reqs := l.Submit("x1") // emits immediately, schedules a reopen
//	for _, req := range reqs {
//	    ev := req.Event
//	    clock.Schedule(req.Delay, func() { l.HandleTimerFired(ev) })
//	}
//	clock.Advance(100 * time.Millisecond) // reopen fires here
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	entries []manualEntry
}

type manualEntry struct {
	due  time.Duration
	seq  int
	fire func()
}

var _ Scheduler = &Manual{}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Schedule(delay time.Duration, fire func()) {
	if delay < 0 {
		delay = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	m.entries = append(m.entries, manualEntry{
		due:  m.now + delay,
		seq:  m.seq,
		fire: fire,
	})
}

// Now returns the virtual clock's current reading. The clock starts at 0
// and only Advance moves it.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// Pending reports how many scheduled callbacks have not fired yet.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// Advance moves the virtual clock forward by d and fires every callback
// that falls due, including callbacks scheduled by earlier callbacks within
// the same window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		next, ok := m.takeNextDue(target)
		if !ok {
			break
		}
		next.fire()
	}

	m.mu.Lock()
	if target > m.now {
		m.now = target
	}
	m.mu.Unlock()
}

// takeNextDue pops the earliest entry due at or before target, moving the
// virtual clock to its due time.
func (m *Manual) takeNextDue(target time.Duration) (manualEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.entries, func(i, j int) bool {
		if m.entries[i].due != m.entries[j].due {
			return m.entries[i].due < m.entries[j].due
		}
		return m.entries[i].seq < m.entries[j].seq
	})
	if len(m.entries) == 0 || m.entries[0].due > target {
		return manualEntry{}, false
	}
	next := m.entries[0]
	m.entries = m.entries[1:]
	if next.due > m.now {
		m.now = next.due
	}
	return next, true
}
