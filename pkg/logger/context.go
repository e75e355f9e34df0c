package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

var requestLoggerKey contextKey

// With stores a child logger carrying extra fields on the context, so
// everything downstream of the request middleware logs with the same
// trace id.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, requestLoggerKey, l)
}

// From pulls the request-scoped logger back out, falling back to the
// process-wide logger for contexts that never passed through the
// middleware.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok {
			return l
		}
	}
	return LoggerWrapper()
}
