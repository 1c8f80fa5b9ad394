// Package requestid carries the per-request correlation id through
// context.Context, so layers below HTTP (services, audit logging) can stamp
// it without knowing about the web framework.
package requestid

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the request id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id stored in ctx, or "" when none is set.
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
