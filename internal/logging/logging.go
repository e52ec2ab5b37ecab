// Package logging provides slog setup and context-aware loggers.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// OperationIDKey is the context key for the operation id of a CLI invocation.
type OperationIDKey struct{}

// Setup installs a text slog handler writing to w as the default logger.
func Setup(level string, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// WithOperationID returns a context carrying id.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, OperationIDKey{}, id)
}

// GetOperationID returns the operation id from the context, or empty string if not found.
func GetOperationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(OperationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Logger returns a logger with the op_id from the context.
func Logger(ctx context.Context) *slog.Logger {
	if id := GetOperationID(ctx); id != "" {
		return slog.Default().With("op_id", id)
	}
	return slog.Default()
}
