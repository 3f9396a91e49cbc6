package limit

import (
	"time"
)

// Limiter is a rate-limiting state machine for a single stream of values.
// It supports two policies:
//
//   - Debounce: emit only the most recent value once the stream has been
//     quiet for a cooldown period. Arbitrarily long bursts are tolerated;
//     only the last value of a burst is ever emitted.
//   - Throttle: emit the first value immediately, then suppress everything
//     until a fixed interval elapses. Suppressed values are dropped, not
//     queued.
//
// A Limiter owns no timers and performs no I/O. Every operation is a
// synchronous transformation that returns at most one emission plus zero or
// more ScheduleRequests; the caller hands those requests to a Scheduler
// collaborator and routes fired timers back in through HandleTimerFired.
//
// Usage Example:
//
//	l := limit.NewDebounce[string](500 * time.Millisecond)
//
//	// a value arrives
//	_, _, reqs := l.Submit("query")
//	for _, req := range reqs {
//	    scheduler.Schedule(req.Delay, func() {
//	        if v, ok, _ := l.HandleTimerFired(req.Event); ok {
//	            search(v)
//	        }
//	    })
//	}
//
// Operations on one Limiter must be invoked strictly sequentially; the
// Limiter does no internal locking. The Stream type in the root package
// provides that sequencing when the caller does not already have a
// single-threaded loop of its own.
type Limiter[T any] struct {
	mode  Mode
	state State

	// pending holds not-yet-emitted values, most recent first.
	// Debounce only; always empty for Throttle.
	pending []T
}

// Mode is the fixed policy of a Limiter. Exactly two implementations exist:
// Debounce and Throttle. The variant never changes for the lifetime of a
// Limiter instance.
type Mode interface {
	isMode()
}

// Debounce emits the most recent value after Cooldown of quiet.
type Debounce struct {
	Cooldown time.Duration
}

// Throttle emits the first value of each window and drops the rest of the
// window's arrivals. Interval is the window length.
type Throttle struct {
	Interval time.Duration
}

func (Debounce) isMode() {}
func (Throttle) isMode() {}

// State is the suppression flag of a Limiter. A Throttle limiter toggles
// between Open and Closed; a Debounce limiter is always Open (its "busy"
// condition is a non-empty pending queue instead).
type State int

const (
	Open State = iota
	Closed
)

func (s State) String() string {
	if s == Closed {
		return "closed"
	}
	return "open"
}

// TimerEvent identifies a fired timer when it is delivered back into
// HandleTimerFired. Exactly two implementations exist: SettleCheck and
// Reopen.
type TimerEvent interface {
	isTimerEvent()
}

// SettleCheck asks a Debounce limiter whether the stream has settled.
// Stamp is the pending-queue length at the moment the check was scheduled;
// the check only results in an emission when Stamp still equals the queue
// length at fire time. Every submission grows the queue and every emission
// resets it, so only the last-scheduled check of a burst can match. This
// replaces timer cancellation: stale checks are ignored, not cancelled.
type SettleCheck struct {
	Stamp int
}

// Reopen ends a Throttle limiter's closed window.
type Reopen struct{}

func (SettleCheck) isTimerEvent() {}
func (Reopen) isTimerEvent() {}

// ScheduleRequest asks the caller's Scheduler to deliver Event back into
// HandleTimerFired no earlier than Delay from now.
type ScheduleRequest struct {
	Delay time.Duration
	Event TimerEvent
}

// NewDebounce creates an open Debounce limiter with the given cooldown.
// The cooldown is not validated; non-positive durations are a caller
// contract violation.
func NewDebounce[T any](cooldown time.Duration) *Limiter[T] {
	return &Limiter[T]{
		mode:  Debounce{Cooldown: cooldown},
		state: Open,
	}
}

// NewThrottle creates an open Throttle limiter with the given interval.
// The interval is not validated; non-positive durations are a caller
// contract violation.
func NewThrottle[T any](interval time.Duration) *Limiter[T] {
	return &Limiter[T]{
		mode:  Throttle{Interval: interval},
		state: Open,
	}
}

// Mode returns the limiter's fixed policy variant.
func (l *Limiter[T]) Mode() Mode {
	return l.mode
}

// State reports whether the limiter is currently suppressing (Closed).
func (l *Limiter[T]) State() State {
	return l.state
}

// PendingLen reports the number of queued, not-yet-emitted values.
// Always 0 for Throttle.
func (l *Limiter[T]) PendingLen() int {
	return len(l.pending)
}

// Submit feeds one value into the limiter and returns at most one emission
// plus any timers to schedule:
//
//   - Open Debounce: queue the value, request a settle check after the
//     cooldown, emit nothing yet.
//   - Open Throttle: close the limiter, request a reopen after the interval,
//     emit the value immediately.
//   - Closed: drop the value. No state change, no emission, no scheduling.
//     The closed window is not extended.
func (l *Limiter[T]) Submit(v T) (emit T, emitted bool, reqs []ScheduleRequest) {
	return l.Apply(l.Classify(v))
}

// HandleTimerFired delivers a fired timer into the limiter:
//
//   - SettleCheck on a Debounce limiter emits the most recent queued value
//     and clears the queue, but only when the check's stamp still matches
//     the queue length; a stale check is ignored.
//   - Reopen on a Throttle limiter sets the state back to Open.
//
// Any other combination is a silent no-op. It cannot occur under correct
// usage but must not fail; a fired timer against a limiter whose mode never
// scheduled it simply leaves the limiter unchanged.
func (l *Limiter[T]) HandleTimerFired(ev TimerEvent) (emit T, emitted bool, reqs []ScheduleRequest) {
	switch ev := ev.(type) {
	case SettleCheck:
		if _, ok := l.mode.(Debounce); !ok {
			return emit, false, nil
		}
		if len(l.pending) == 0 || ev.Stamp != len(l.pending) {
			return emit, false, nil
		}
		emit = l.pending[0]
		l.pending = nil
		return emit, true, nil
	case Reopen:
		if _, ok := l.mode.(Throttle); !ok {
			return emit, false, nil
		}
		l.state = Open
		return emit, false, nil
	}
	return emit, false, nil
}
