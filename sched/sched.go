package sched

import "time"

// Scheduler delivers a callback after a delay. It is the only asynchronous
// collaborator of the rate limiter: limit.Limiter returns ScheduleRequests,
// the caller turns each into a Schedule call, and the fired callback routes
// the request's TimerEvent back into the limiter.
//
// Implementations must fire each scheduled callback exactly once, no earlier
// than the requested delay (there is no upper bound), and must support a
// zero delay meaning "as soon as possible, but not synchronously inside
// Schedule". No ordering is guaranteed between callbacks scheduled on
// different Scheduler instances.
//
// Two implementations are provided: Timers for production use and Manual
// for deterministic tests and simulations.
type Scheduler interface {
	Schedule(delay time.Duration, fire func())
}

type timers struct{}

var _ Scheduler = &timers{}

// NewTimers returns the wall-clock Scheduler backed by time.AfterFunc.
// Callbacks run on their own goroutine; callers needing sequencing must
// funnel them into a single loop (the root package's Stream does this).
func NewTimers() Scheduler {
	return &timers{}
}

func (t *timers) Schedule(delay time.Duration, fire func()) {
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, fire)
}
