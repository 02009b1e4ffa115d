// Package jwt verifies HS256 access tokens with github.com/golang-jwt/jwt/v5
// and exposes the tenant claim to the tenant resolver.
//
// The middleware is optional by default: a request without a token continues
// anonymously, and the tenant resolver may then fall back to the tenant
// header or query parameter. A request with a token is authenticated only if
// the token verifies; otherwise it is rejected.
//
//	svc, err := jwt.NewFromString(cfg.JWTSecret, jwt.WithIssuer("tenantd"))
//	if err != nil {
//		return err
//	}
//	r.Use(jwt.Middleware(svc))
//	r.Use(tenant.Middleware(tenant.WithClaimSource(jwt.TenantClaim(tenant.DefaultClaimName))))
package jwt
