package limit

// Decision is the classification of one submitted value against the
// limiter's current state, separated from the act of carrying it out.
// Exactly three implementations exist: Enqueue, EmitAndClose and Drop.
//
// Classify and Apply exist for hosts whose event handlers may only return a
// value to be dispatched later, not mutate state in place: the handler calls
// Classify at the moment the event arrives, routes the Decision through its
// own dispatch mechanism, and the receiving end calls Apply. Submit is the
// shortcut for callers that can do both at once; Submit(v) and
// Apply(Classify(v)) are interchangeable by construction.
type Decision[T any] interface {
	isDecision()
}

// Enqueue queues the value for a later settle check (open Debounce).
type Enqueue[T any] struct {
	Value T
}

// EmitAndClose emits the value now and closes the limiter for one interval
// (open Throttle).
type EmitAndClose[T any] struct {
	Value T
}

// Drop discards the value (closed limiter).
type Drop[T any] struct {
	Value T
}

func (Enqueue[T]) isDecision() {}
func (EmitAndClose[T]) isDecision() {}
func (Drop[T]) isDecision() {}

// Classify decides what Submit would do with v without doing it.
// It never modifies the limiter.
func (l *Limiter[T]) Classify(v T) Decision[T] {
	if l.state == Closed {
		return Drop[T]{Value: v}
	}
	switch l.mode.(type) {
	case Debounce:
		return Enqueue[T]{Value: v}
	case Throttle:
		return EmitAndClose[T]{Value: v}
	}
	return Drop[T]{Value: v}
}

// Apply carries out a Decision previously produced by Classify. The
// transitions are the single source of truth for Submit as well.
func (l *Limiter[T]) Apply(d Decision[T]) (emit T, emitted bool, reqs []ScheduleRequest) {
	switch d := d.(type) {
	case Enqueue[T]:
		mode, ok := l.mode.(Debounce)
		if !ok {
			return emit, false, nil
		}
		l.pending = append([]T{d.Value}, l.pending...)
		return emit, false, []ScheduleRequest{{
			Delay: mode.Cooldown,
			Event: SettleCheck{Stamp: len(l.pending)},
		}}
	case EmitAndClose[T]:
		mode, ok := l.mode.(Throttle)
		if !ok {
			return emit, false, nil
		}
		l.state = Closed
		return d.Value, true, []ScheduleRequest{{
			Delay: mode.Interval,
			Event: Reopen{},
		}}
	case Drop[T]:
		return emit, false, nil
	}
	return emit, false, nil
}
