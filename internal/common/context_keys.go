// File: internal/common/context_keys.go
package common

import "context"

const (
	// CurrentUserKey is the gin context key holding the resolved *shared.User
	// for the current session, set by the session middleware. Absent for
	// anonymous requests.
	CurrentUserKey = "currentUser"

	// RequestIDContextKey is the gin context key for the request ID.
	RequestIDContextKey = "requestID"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID returns a context carrying the request ID, so layers below
// the transport (services, audit) can correlate their records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID carried by the context, or ""
// when none was set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
