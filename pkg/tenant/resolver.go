package tenant

import (
	"context"
	"net/http"
	"sync"
)

// Resolver determines the tenant of one resolution scope: a single HTTP
// request or one explicitly scoped background operation.
//
// Precedence, first match wins:
//  1. explicit override (SetExplicit)
//  2. authenticated tenant claim
//  3. header, unauthenticated callers only
//  4. query parameter, unauthenticated callers only and no header present
//
// The signal-based result is computed once and cached for the rest of the
// scope. A Resolver must never be shared between scopes.
type Resolver struct {
	req *http.Request
	cfg *config

	mu       sync.Mutex
	explicit *ID
	done     bool
	cached   Identity
	err      error
}

// NewRequestResolver creates a resolver reading signals from the request.
func NewRequestResolver(r *http.Request, opts ...Option) *Resolver {
	return &Resolver{req: r, cfg: newConfig(opts)}
}

// NewResolver creates a resolver with no request signals. It only resolves
// through SetExplicit and is meant for jobs and other non-request work.
func NewResolver(opts ...Option) *Resolver {
	return &Resolver{cfg: newConfig(opts)}
}

// SetExplicit pins the scope to the given tenant until ClearExplicit.
func (r *Resolver) SetExplicit(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.explicit = &id
}

// ClearExplicit removes the explicit override. Resolution falls back to
// the request signals.
func (r *Resolver) ClearExplicit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.explicit = nil
}

// Resolve returns the identity of the scope. An unresolved identity is not an
// error; malformed signal values are reported as ErrInvalidIdentifier.
func (r *Resolver) Resolve(ctx context.Context) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.explicit != nil {
		return Resolved(*r.explicit), nil
	}
	if !r.done {
		r.cached, r.err = r.fromSignals(ctx)
		r.done = true
	}
	return r.cached, r.err
}

// Require resolves the scope and fails with ErrTenantRequired when no
// tenant could be determined.
func (r *Resolver) Require(ctx context.Context) (ID, error) {
	identity, err := r.Resolve(ctx)
	if err != nil {
		return 0, err
	}
	id, ok := identity.ID()
	if !ok {
		return 0, ErrTenantRequired
	}
	return id, nil
}

// HasTenant reports whether the scope resolves to a tenant.
func (r *Resolver) HasTenant(ctx context.Context) bool {
	identity, err := r.Resolve(ctx)
	return err == nil && identity.IsResolved()
}

// Peek returns the identity already known to the scope without consulting
// any signal.
func (r *Resolver) Peek() Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.explicit != nil {
		return Resolved(*r.explicit)
	}
	if r.done && r.err == nil {
		return r.cached
	}
	return Unresolved()
}

func (r *Resolver) fromSignals(ctx context.Context) (Identity, error) {
	if r.cfg.claims != nil {
		claim, authenticated := r.cfg.claims(ctx)
		if authenticated {
			// Self-reported header and query values are never trusted
			// once the caller is authenticated.
			if claim == "" {
				return Unresolved(), nil
			}
			return parseIdentity(claim)
		}
	}

	if r.req == nil {
		return Unresolved(), nil
	}
	if v := r.req.Header.Get(r.cfg.headerName); v != "" {
		return parseIdentity(v)
	}
	if v := r.req.URL.Query().Get(r.cfg.queryParam); v != "" {
		return parseIdentity(v)
	}
	return Unresolved(), nil
}

func parseIdentity(v string) (Identity, error) {
	id, err := ParseID(v)
	if err != nil {
		return Unresolved(), err
	}
	return Resolved(id), nil
}
