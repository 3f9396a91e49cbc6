package quell_go

import (
	"github.com/quell/quell-go/gate"
	"github.com/quell/quell-go/logger"
	"github.com/quell/quell-go/sched"
)

type streamConfig[T any] struct {
	// scheduler delivers delayed settle-check and reopen timers
	// back into the stream.
	// It's useful for tests and simulations, where sched.Manual
	// gives full control over time.
	// default: sched.NewTimers()
	scheduler sched.Scheduler

	// gate is an admission check applied before a value reaches
	// the limiter; refused values go to onDrop
	// default: gate.Noop (admit everything)
	gate gate.Gate

	// onDrop is called with every value the stream discards, either
	// because the throttle window was closed or the gate refused it.
	// Debounced values superseded within a burst are not reported;
	// they are replaced, not dropped.
	// default: nil (drops are silent)
	onDrop func(T)

	// bufferSize determines the buffer of the internal event channel
	// to prevent blocking on Submit calls
	// default: 64
	bufferSize int

	// logger provides logging functionality for all internal
	// stream operations
	// default: logger.Noop
	logger logger.Logger
}

func defaultStreamConfig[T any]() streamConfig[T] {
	return streamConfig[T]{
		scheduler:  sched.NewTimers(),
		gate:       gate.Noop{},
		onDrop:     nil,
		bufferSize: 64,
		logger:     logger.Noop{},
	}
}

type StreamOption[T any] func(c *streamConfig[T])

func WithScheduler[T any](scheduler sched.Scheduler) StreamOption[T] {
	return func(c *streamConfig[T]) {
		if scheduler != nil {
			c.scheduler = scheduler
		}
	}
}

func WithGate[T any](g gate.Gate) StreamOption[T] {
	return func(c *streamConfig[T]) {
		if g != nil {
			c.gate = g
		}
	}
}

func WithOnDrop[T any](fn func(T)) StreamOption[T] {
	return func(c *streamConfig[T]) {
		c.onDrop = fn
	}
}

func WithBufferSize[T any](size int) StreamOption[T] {
	return func(c *streamConfig[T]) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

func WithLogger[T any](log logger.Logger) StreamOption[T] {
	return func(c *streamConfig[T]) {
		if log != nil {
			c.logger = log
		}
	}
}
