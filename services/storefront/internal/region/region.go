package region

import (
	"context"
	"strings"
)

// Resolver reports the caller's active region code.
type Resolver interface {
	ActiveRegion(ctx context.Context) string
}

// Static always resolves to the same region.
type Static string

// ActiveRegion implements Resolver.
func (s Static) ActiveRegion(context.Context) string {
	return string(s)
}

type contextKey struct{}

// NewContext returns a context carrying the region code.
func NewContext(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, contextKey{}, code)
}

// FromContext returns the region code stored by NewContext.
func FromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(contextKey{}).(string)
	return code, ok && code != ""
}

// ContextResolver resolves the region placed in the request context,
// falling back to Default.
type ContextResolver struct {
	Default string
}

// ActiveRegion implements Resolver.
func (r ContextResolver) ActiveRegion(ctx context.Context) string {
	if code, ok := FromContext(ctx); ok {
		return code
	}
	return r.Default
}

// Normalize upper-cases and trims a region code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
