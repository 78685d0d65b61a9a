package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With stores a logger carrying the extra fields on the context. Handlers
// and services pick it up with From, so request-scoped fields such as the
// request id follow the call chain.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the request-scoped logger, or the process logger if the
// context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
