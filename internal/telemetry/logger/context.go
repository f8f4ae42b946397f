package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = "rehashkv.logger"
	// connIDKey is the context key for a connection ID.
	connIDKey contextKey = "rehashkv.conn_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithConnID adds a connection ID to the context.
func WithConnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, connIDKey, id)
}

// ConnIDFromContext extracts the connection ID from context.
func ConnIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(connIDKey).(string); ok {
		return id
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger with the
// connection ID from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := ConnIDFromContext(ctx); id != "" {
		l = l.With("conn", id)
	}
	return l
}
