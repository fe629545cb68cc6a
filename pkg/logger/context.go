package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const (
	loggerKey ctxKey = "logger"
	fieldsKey ctxKey = "fields"
)

// With returns a new context that includes a logger with fields.
func With(ctx context.Context, fields ...any) context.Context {
	prev, _ := ctx.Value(fieldsKey).([]any)
	all := make([]any, 0, len(prev)+len(fields))
	all = append(append(all, prev...), fields...)

	l := From(ctx).With(fields...)
	ctx = context.WithValue(ctx, fieldsKey, all)
	return context.WithValue(ctx, loggerKey, l)
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}

// FromOr returns fallback carrying every field added with With.
func FromOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	fields, _ := ctx.Value(fieldsKey).([]any)
	if len(fields) == 0 {
		return fallback
	}
	return fallback.With(fields...)
}
