package jwt

import (
	"context"
	"encoding/json"
	"strconv"
)

type contextKey struct{ name string }

func (c contextKey) String() string { return c.name }

var (
	tokenContextKey  = &contextKey{name: "jwt"}
	claimsContextKey = &contextKey{name: "jwt_claims"}
)

// SetToken stores the raw token in ctx.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// SetClaims stores verified claims in ctx, marking the caller authenticated.
func SetClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetToken returns the raw token of the request, if any.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}

// GetClaims returns the verified claims of the request, if any.
func GetClaims(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(Claims)
	return claims, ok && claims != nil
}

// TenantClaim returns a tenant.ClaimSource reading claim name from verified
// claims. Numeric claims are accepted as well as strings.
//
//	tenant.Middleware(tenant.WithClaimSource(jwt.TenantClaim(tenant.DefaultClaimName)))
func TenantClaim(name string) func(ctx context.Context) (string, bool) {
	return func(ctx context.Context) (string, bool) {
		claims, ok := GetClaims(ctx)
		if !ok {
			return "", false
		}
		switch v := claims[name].(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case json.Number:
			return v.String(), true
		case int64:
			return strconv.FormatInt(v, 10), true
		case int:
			return strconv.Itoa(v), true
		default:
			return "", true
		}
	}
}

// Subject returns the sub claim of the authenticated caller.
func Subject(ctx context.Context) (string, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return "", false
	}
	sub, ok := claims["sub"].(string)
	return sub, ok && sub != ""
}
