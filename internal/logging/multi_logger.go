package logging

import "github.com/mortie23/tptload/pkg/tptload"

// MultiLogger forwards every message to each of its loggers in order.
type MultiLogger struct {
	loggers []tptload.Logger
}

// NewMultiLogger creates a MultiLogger. Nil loggers are ignored.
func NewMultiLogger(loggers ...tptload.Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) Verbose(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Verbose(format, args...)
	}
}

func (m *MultiLogger) Info(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Info(format, args...)
	}
}

func (m *MultiLogger) Warn(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Warn(format, args...)
	}
}

func (m *MultiLogger) Error(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Error(format, args...)
	}
}

func (m *MultiLogger) Success(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Success(format, args...)
	}
}
