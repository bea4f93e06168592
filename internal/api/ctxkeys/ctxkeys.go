// Shared context keys for the API layer. Extracted to a leaf package
// so middleware and handlers agree on key type and value without
// import cycles.
package ctxkeys

import "context"

// Key is the unexported named type for all API context keys. Using a
// named type avoids collisions with string keys from other packages
// (context.Value compares both type and value).
type Key string

const (
	// RequestID is the context key for the per-request correlation id.
	// Injected by the request middleware, read by handlers and logs.
	RequestID Key = "request_id"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// Value reads a ctxkeys.Key string from the context, empty when
// missing.
func Value(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}
