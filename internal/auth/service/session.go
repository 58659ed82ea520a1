package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubroll/clubroll/internal/auth/domain"
	"github.com/clubroll/clubroll/internal/auth/session"
	"github.com/clubroll/clubroll/pkg/cryptox"
	"github.com/clubroll/clubroll/pkg/jwtx"
)

// SessionService revokes sessions and authenticates access tokens
// against the revocation state.
type SessionService struct {
	Codec    *jwtx.Codec
	Sessions session.Store
}

// Logout revokes the presented credentials: the access token is
// blacklisted for its remaining lifetime and the refresh session is
// deleted. Logout is idempotent; absent or already-revoked state is
// not an error. Only infrastructure failures surface.
func (s *SessionService) Logout(ctx context.Context, rawAccess, presentedRefresh string) error {
	if strings.TrimSpace(rawAccess) != "" {
		claims, err := s.Codec.ParseAllowExpired(rawAccess)
		if err == nil {
			// An expired token has nothing left to deny; the store
			// skips the write when the remaining lifetime is zero.
			remaining := claims.Remaining(time.Now().UTC())
			if err := s.Sessions.Blacklist(ctx, cryptox.FingerprintToken(rawAccess), remaining); err != nil {
				return fmt.Errorf("blacklist access token: %w", err)
			}
		}
		// A token that fails verification is not blacklisted: its
		// expiry cannot be trusted and it never authenticates anyway.
	}

	if strings.TrimSpace(presentedRefresh) != "" {
		fingerprint := cryptox.FingerprintToken(presentedRefresh)
		if err := s.Sessions.DeleteRefresh(ctx, fingerprint); err != nil {
			return fmt.Errorf("delete refresh session: %w", err)
		}
	}

	return nil
}

// Authenticate verifies an access token and returns the principal it
// names. Every token-side failure collapses into ErrUnauthenticated so
// callers cannot distinguish forged, expired, and revoked tokens.
// Infrastructure failures are returned as-is: a caller must fail
// closed, not treat them as a clean rejection.
func (s *SessionService) Authenticate(ctx context.Context, rawAccess string) (domain.Principal, error) {
	claims, err := s.Codec.Parse(rawAccess)
	if err != nil {
		return domain.Principal{}, ErrUnauthenticated
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Principal{}, ErrUnauthenticated
	}

	blacklisted, err := s.Sessions.IsBlacklisted(ctx, cryptox.FingerprintToken(rawAccess))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("check blacklist: %w", err)
	}
	if blacklisted {
		return domain.Principal{}, ErrUnauthenticated
	}

	return domain.Principal{ID: claims.Subject, Role: role}, nil
}
