package gate

// Gate is an admission check applied to a value before it reaches the
// rate limiter. A Stream consults its Gate once per submission; a refused
// value never enters the limiter and is reported through the stream's drop
// callback instead.
//
// The Gate sits upstream of the debounce/throttle policy, so the two
// compose: a token bucket can cap the sustained input rate while the
// limiter still shapes what survives into emissions.
//
// Example usage:
//
//	stream := quell_go.NewDebounceStream(300*time.Millisecond, emit,
//	    quell_go.WithGate[string](gate.NewTokenBucket(50, 10)),
//	)
type Gate interface {
	// Allow reports whether one more value may be admitted right now.
	// It must not block.
	Allow() bool
}

type Noop struct {
}

var _ Gate = &Noop{}

func (n Noop) Allow() bool {
	return true
}
