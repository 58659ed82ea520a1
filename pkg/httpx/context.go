package httpx

import (
	"context"

	"github.com/clubroll/clubroll/internal/auth/domain"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// ContextWithPrincipal returns ctx carrying the authenticated principal.
func ContextWithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the authenticated principal injected by
// AuthnMiddleware, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(domain.Principal)
	return p, ok
}
