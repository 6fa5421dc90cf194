package ahttp

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about failures outside the
// error classification path: response serialization errors and panicking
// custom error handlers.
type Logger interface {
	LogWriteError(err error)
	LogErrorHandlerPanic(value any)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogWriteError(err error) {
	l.Logger.Printf("ahttp: error while writing response: %s", err)
}

func (l stdLogger) LogErrorHandlerPanic(value any) {
	l.Logger.Printf("ahttp: error handler panicked: %v", value)
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type TestLogger struct {
	tb testing.TB

	NumLogWriteError        int64
	NumLogErrorHandlerPanic int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogWriteError(err error) {
	atomic.AddInt64(&l.NumLogWriteError, 1)
	l.tb.Logf("ahttp: error while writing response: %s", err)
}

func (l *TestLogger) LogErrorHandlerPanic(value any) {
	atomic.AddInt64(&l.NumLogErrorHandlerPanic, 1)
	l.tb.Logf("ahttp: error handler panicked: %v", value)
}

var _ Logger = &TestLogger{}
