package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/clubroll/clubroll/internal/auth/domain"
	"github.com/clubroll/clubroll/internal/auth/service"
	"github.com/clubroll/clubroll/pkg/slogx"
)

// Authenticator resolves a raw access token into a principal. Token
// failures are reported as service.ErrUnauthenticated; anything else is
// an infrastructure failure.
type Authenticator interface {
	Authenticate(ctx context.Context, rawAccess string) (domain.Principal, error)
}

// AuthnMiddleware verifies the bearer access token and injects the
// resulting principal into the request context. A backend failure
// answers 503, never 401: the token was not judged.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			p, err := a.Authenticate(ctx, raw)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					writeBearerError(w, "token verification failed")
					return
				}
				log.Error("authenticate failed", "err", err)
				WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Authentication backend unavailable")
				return
			}

			ctx = ContextWithPrincipal(ctx, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	return raw, raw != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
