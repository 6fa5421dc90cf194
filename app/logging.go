package app

import (
	"net/http"

	"github.com/advdv/ahttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// Uses JSON encoding suitable for log aggregation.
// AHTTP_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogWriteError(err error) {
	l.Logger.Error("error while writing response", zap.Error(err))
}

func (l zapLogger) LogErrorHandlerPanic(value any) {
	l.Logger.Error("error handler panicked", zap.Any("panic", value))
}

func newZapAHTTPLogger(l *zap.Logger) ahttp.Logger {
	return zapLogger{l.Named("ahttp").Named("app")}
}

// NewErrorHandler returns an error handling policy that emits one structured
// log entry per classified failure and synthesizes the standard 500 fallback
// for every type that requires a response.
func NewErrorHandler(logs *zap.Logger) ahttp.ErrorHandler {
	logs = logs.Named("ahttp")

	return func(t ahttp.ErrorType, cause error, trace ahttp.Trace) *ahttp.Response {
		fields := []zap.Field{zap.Stringer("type", t)}
		if cause != nil {
			fields = append(fields, zap.Error(cause))
		}

		if len(trace) > 0 {
			fields = append(fields, zap.String("trace", trace.String()))
		}

		logs.Error("request failed", fields...)

		if !t.ResponseNeeded() {
			return nil
		}

		return ahttp.EmptyResponse(http.StatusInternalServerError)
	}
}
