package jwt

import (
	"log/slog"
	"net/http"
	"strings"
)

// TokenExtractorFunc extracts a token from a request. It returns an empty
// string when the request carries none.
type TokenExtractorFunc func(r *http.Request) (string, error)

// MiddlewareConfig configures the middleware.
type MiddlewareConfig struct {
	Service   *Service
	Extractor TokenExtractorFunc // defaults to BearerTokenExtractor
	Required  bool               // reject requests without a token
	Logger    *slog.Logger
}

// Middleware verifies bearer tokens when present. Requests without a token
// pass through anonymously; invalid tokens are rejected with 401.
func Middleware(service *Service) func(next http.Handler) http.Handler {
	return MiddlewareWithConfig(MiddlewareConfig{Service: service})
}

// MiddlewareWithConfig is Middleware with explicit configuration.
func MiddlewareWithConfig(cfg MiddlewareConfig) func(next http.Handler) http.Handler {
	if cfg.Extractor == nil {
		cfg.Extractor = BearerTokenExtractor
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := cfg.Extractor(r)
			if err == nil && token == "" {
				if cfg.Required {
					http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			var claims Claims
			if err == nil {
				claims, err = cfg.Service.Parse(token)
			}
			if err != nil {
				cfg.Logger.WarnContext(r.Context(), "rejected access token", "error", err)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := SetClaims(SetToken(r.Context(), token), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerTokenExtractor reads "Authorization: Bearer <token>". A malformed
// header is an error; a missing one is not.
func BearerTokenExtractor(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
