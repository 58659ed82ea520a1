package httpx

import (
	"net/http"

	"github.com/clubroll/clubroll/internal/auth/domain"
)

// RequireRole restricts a handler to principals carrying the given
// role. The role claim is trusted as signed; there is no secondary
// store lookup here.
func RequireRole(role domain.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok || p.Role != role {
				writeBearerRoleError(w, role)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750-compliant error response for an insufficient role.
func writeBearerRoleError(w http.ResponseWriter, required domain.Role) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+required.String()+`"`)
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte("insufficient_role"))
}
