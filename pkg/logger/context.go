package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into stores l on ctx. Later calls to With extend it.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// With adds fields to the request-scoped logger.
func With(ctx context.Context, fields ...any) context.Context {
	return Into(ctx, From(ctx).With(fields...))
}

// From returns the request-scoped logger, falling back to the process logger.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return LoggerWrapper()
}

// Ensure stores l on ctx unless a logger is already there.
func Ensure(ctx context.Context, l *slog.Logger) context.Context {
	if _, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok || l == nil {
		return ctx
	}
	return Into(ctx, l)
}
