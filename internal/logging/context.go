package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type ctxRequestIDKey struct{}

// CtxRequestID returns the request ID stored in ctx. A new ID is generated when none is set.
func CtxRequestID(ctx context.Context) (string, context.Context) {
	if id, ok := ctx.Value(ctxRequestIDKey{}).(string); ok {
		return id, ctx
	}

	newID := uuid.NewString()
	return newID, context.WithValue(ctx, ctxRequestIDKey{}, newID)
}

type ctxLoggerKey struct{}

// With returns a new context with logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns logger from context. If logger is not set, return default logger
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}
