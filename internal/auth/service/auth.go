package service

import (
	"context"
	"time"

	"github.com/clubroll/clubroll/internal/auth/domain"
)

// AuthService is the single entry point for the token lifecycle:
// issuing pairs, reissuing access tokens, revoking sessions, and
// authenticating requests. It composes the issuing and revocation
// halves so handlers depend on one surface.
type AuthService struct {
	Tokens  *TokenService
	Revoker *SessionService
}

func (s *AuthService) Login(ctx context.Context, p domain.Principal) (domain.TokenPair, error) {
	return s.Tokens.Login(ctx, p)
}

func (s *AuthService) Reissue(ctx context.Context, presentedRefresh string, role domain.Role) (domain.TokenPair, time.Duration, error) {
	return s.Tokens.Reissue(ctx, presentedRefresh, role)
}

func (s *AuthService) Logout(ctx context.Context, rawAccess, presentedRefresh string) error {
	return s.Revoker.Logout(ctx, rawAccess, presentedRefresh)
}

func (s *AuthService) Authenticate(ctx context.Context, rawAccess string) (domain.Principal, error) {
	return s.Revoker.Authenticate(ctx, rawAccess)
}
