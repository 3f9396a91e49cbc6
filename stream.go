package quell_go

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quell/quell-go/limit"
)

// Stream owns one rate-limited stream of values. It wraps a limit.Limiter
// with the single-threaded loop the limiter requires: submissions from any
// goroutine and fired timers are funneled into one listen goroutine, which
// is the only mutator of the limiter and the only caller of the emit and
// drop callbacks.
//
// Usage Example:
//
//	stream := quell_go.NewDebounceStream(300*time.Millisecond,
//	    func(q string) { search(q) },
//	)
//	stream.Start()
//	defer stream.Stop()
//
//	// called on every keystroke; search() runs once per quiet period
//	stream.Submit(input)
//
// Callbacks run on the listen goroutine; a slow emit callback delays the
// stream's own processing but never reorders it.
type Stream[T any] struct {
	limiter *limit.Limiter[T]
	emit    func(T)
	config  streamConfig[T]
	events  chan streamEvent[T]
	loop    errgroup.Group
	mu      sync.RWMutex
	running bool
}

// streamEvent is one input to the listen loop: a submitted value or a
// fired timer, never both.
type streamEvent[T any] struct {
	value T
	timer limit.TimerEvent
}

// NewDebounceStream builds a stream that emits the most recent value once
// submissions have been quiet for cooldown.
func NewDebounceStream[T any](
	cooldown time.Duration,
	emit func(T),
	opts ...StreamOption[T],
) *Stream[T] {
	return newStream(limit.NewDebounce[T](cooldown), emit, opts)
}

// NewThrottleStream builds a stream that emits the first value of each
// interval-long window and drops the rest.
func NewThrottleStream[T any](
	interval time.Duration,
	emit func(T),
	opts ...StreamOption[T],
) *Stream[T] {
	return newStream(limit.NewThrottle[T](interval), emit, opts)
}

func newStream[T any](
	limiter *limit.Limiter[T],
	emit func(T),
	opts []StreamOption[T],
) *Stream[T] {
	cfg := defaultStreamConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Stream[T]{
		limiter: limiter,
		emit:    emit,
		config:  cfg,
		events:  make(chan streamEvent[T], cfg.bufferSize),
	}
}

// Start begins the listen loop. Idempotent: calling Start on a running
// stream has no effect.
func (s *Stream[T]) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.loop.Go(func() error {
		s.listen()
		return nil
	})
	s.running = true
	s.config.logger.Debugf("quell.Stream: listening...")
}

// Stop shuts the stream down, draining already-queued events first.
// Timers still outstanding with the Scheduler keep their schedule but are
// discarded on delivery; they never reach the limiter. Idempotent, and the
// stream can be started again afterwards.
func (s *Stream[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	// initiate exit from the "listen" loop
	close(s.events)

	err := s.loop.Wait()
	if err != nil {
		s.config.logger.Errorf("quell.Stream: failed to wait for listen loop: %v", err)
	}

	// override events to handle a Start->Stop->Start case
	// as the next Submit would otherwise hit a closed channel
	s.events = make(chan streamEvent[T], s.config.bufferSize)
	s.running = false
	s.config.logger.Debugf("quell.Stream: stopped")
}

// Submit feeds one value into the stream. Safe from any goroutine; blocks
// only when the internal buffer is full. Values submitted before Start are
// buffered and processed once the loop runs.
func (s *Stream[T]) Submit(v T) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.events <- streamEvent[T]{value: v}
}

func (s *Stream[T]) listen() {
	for ev := range s.events {
		if ev.timer != nil {
			s.onTimer(ev.timer)
			continue
		}
		s.onValue(ev.value)
	}
}

// onValue runs on the listen goroutine only.
func (s *Stream[T]) onValue(v T) {
	if !s.config.gate.Allow() {
		s.config.logger.Debugf("quell.Stream: gate refused a value")
		s.notifyDrop(v)
		return
	}

	decision := s.limiter.Classify(v)
	if d, ok := decision.(limit.Drop[T]); ok {
		s.config.logger.Debugf("quell.Stream: dropped a value during closed window")
		s.notifyDrop(d.Value)
	}

	out, emitted, reqs := s.limiter.Apply(decision)
	s.schedule(reqs)
	if emitted {
		s.emit(out)
	}
}

// onTimer runs on the listen goroutine only.
func (s *Stream[T]) onTimer(ev limit.TimerEvent) {
	out, emitted, reqs := s.limiter.HandleTimerFired(ev)
	s.schedule(reqs)
	if emitted {
		s.emit(out)
	}
}

func (s *Stream[T]) schedule(reqs []limit.ScheduleRequest) {
	for _, req := range reqs {
		ev := req.Event
		s.config.scheduler.Schedule(req.Delay, func() {
			s.deliverTimer(ev)
		})
	}
}

// deliverTimer routes a fired timer back into the listen loop. A timer
// firing after Stop is discarded here; the limiter never sees it.
func (s *Stream[T]) deliverTimer(ev limit.TimerEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		s.config.logger.Debugf("quell.Stream: discarded a timer fired after Stop")
		return
	}
	s.events <- streamEvent[T]{timer: ev}
}

func (s *Stream[T]) notifyDrop(v T) {
	if s.config.onDrop != nil {
		s.config.onDrop(v)
	}
}
