// Package tenant resolves which tenant a request or background operation
// belongs to.
//
// Every HTTP request gets its own Resolver, installed into the request
// context by Middleware. The resolver reads identity signals lazily and in a
// fixed order:
//
//  1. an explicit override set with SetExplicit (background jobs, admin tools)
//  2. the authenticated caller's TenantId claim, supplied through a ClaimSource
//  3. the X-Tenant-ID header, only for unauthenticated callers
//  4. the tenantId query parameter, only for unauthenticated callers
//
// An authenticated caller can never switch tenants through a header or query
// string: once a ClaimSource reports the caller as authenticated, only the
// claim is considered. The explicit override beats everything, including the
// claim, until ClearExplicit is called.
//
// # Usage
//
//	r := chi.NewRouter()
//	r.Use(tenant.Middleware(tenant.WithClaimSource(auth.TenantClaim())))
//	r.With(tenant.RequireTenant()).Get("/products", listProducts)
//
//	func listProducts(w http.ResponseWriter, r *http.Request) {
//		res, _ := tenant.ResolverFromContext(r.Context())
//		id, err := res.Require(r.Context())
//		...
//	}
//
// Background work opens its own scope:
//
//	ctx := tenant.WithExplicit(context.Background(), 42)
//
// # Scope
//
// The resolved identity is cached inside the Resolver, which lives exactly as
// long as the request context. There is no process-wide cache of identities.
//
// # Error Handling
//
//   - ErrTenantRequired: no tenant resolved but one is needed
//   - ErrTenantNotFound: the registry has no such tenant
//   - ErrTenantInactive: the tenant was deactivated
//   - ErrInvalidIdentifier: a signal carried a malformed id
package tenant
