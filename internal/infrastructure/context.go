package infrastructure

import "context"

// contextKey is a type for context keys private to this package.
type contextKey string

// TraceIDContextKey is the key for storing the request trace ID in context.
const TraceIDContextKey contextKey = "trace_id"

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context, or an empty string.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return v
	}
	return ""
}
