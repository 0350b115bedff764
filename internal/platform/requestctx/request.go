// Package requestctx carries per-request identity through context.
package requestctx

import "context"

// HeaderRequestID is the HTTP header that carries the request id between
// the arena clients and the content server.
const HeaderRequestID = "X-Request-ID"

// requestIDContextKey is the context key for the request id.
type requestIDContextKey struct{}

// WithRequestID stores a request identifier in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request identifier stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}
