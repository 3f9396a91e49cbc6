package logger

// Noop discards everything. It is the default logger for all quell-go
// components.
type Noop struct {
}

var _ Logger = &Noop{}

func (n Noop) Debugf(format string, args ...any) {
}

func (n Noop) Infof(format string, args ...any) {
}

func (n Noop) Warnf(format string, args ...any) {
}

func (n Noop) Errorf(format string, args ...any) {
}
