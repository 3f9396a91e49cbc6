package logger

// Logger is the pluggable logging interface used across quell-go. It keeps
// the library free of any logging dependency while letting users wire in
// their preferred implementation (standard log, logrus, zap, ...) or
// silence the library entirely with Noop.
//
// The logger is consulted for:
// - stream lifecycle (start, stop, discarded late timers)
// - values dropped by a closed throttle window or a refusing gate
// - scheduling of settle-check and reopen timers
//
// Usage Example:
//
//	// Custom logger on a stream
//	stream := quell_go.NewDebounceStream(cooldown, emit,
//	    quell_go.WithLogger[string](myLogger),
//	)
//
//	// Disable logging entirely (the default)
//	stream := quell_go.NewDebounceStream(cooldown, emit,
//	    quell_go.WithLogger[string](&logger.Noop{}),
//	)
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
