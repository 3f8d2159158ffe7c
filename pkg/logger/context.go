package logger

import "context"

const REQUEST_ID = "request_id"

type ctxKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestIDFromContext returns "" when the context carries no request ID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return EMPTY
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return EMPTY
}

// FromContext returns a child logger tagged with the request ID, if any.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	id := RequestIDFromContext(ctx)
	if id == EMPTY {
		return l
	}
	return &Logger{Logger: l.With(REQUEST_ID, id)}
}
