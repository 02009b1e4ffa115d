package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithResolver attaches the scope's resolver to the context.
func WithResolver(ctx context.Context, r *Resolver) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// ResolverFromContext retrieves the scope's resolver.
// Returns nil, false if the context carries no resolution scope.
func ResolverFromContext(ctx context.Context) (*Resolver, bool) {
	r, ok := ctx.Value(contextKey{}).(*Resolver)
	return r, ok && r != nil
}

// IdentityFromContext resolves the tenant of the scope carried by ctx.
// A context without a scope yields an unresolved identity.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	r, ok := ResolverFromContext(ctx)
	if !ok {
		return Unresolved(), nil
	}
	return r.Resolve(ctx)
}

// NewScope starts a fresh resolution scope with no request signals,
// for background work. The previous scope of ctx, if any, is shadowed.
func NewScope(ctx context.Context, opts ...Option) (context.Context, *Resolver) {
	r := NewResolver(opts...)
	return WithResolver(ctx, r), r
}

// WithExplicit starts a background scope pinned to the given tenant.
func WithExplicit(ctx context.Context, id ID) context.Context {
	ctx, r := NewScope(ctx)
	r.SetExplicit(id)
	return ctx
}

// LoggerExtractor returns a ContextExtractor for the logger that adds the
// tenant id once the scope has resolved it. It never triggers resolution.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		r, ok := ResolverFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		if id, ok := r.Peek().ID(); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
