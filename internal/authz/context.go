package authz

import "context"

// ContextKey is the context key for the authenticated caller.
var ContextKey = &struct{ string }{"caller"}

// CallerFromContext returns the caller attached by the session gate.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ContextKey).(Caller)
	return c, ok
}

// WithCaller returns a new context carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ContextKey, c)
}
