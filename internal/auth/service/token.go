package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubroll/clubroll/internal/auth/domain"
	"github.com/clubroll/clubroll/internal/auth/session"
	"github.com/clubroll/clubroll/pkg/cryptox"
	"github.com/clubroll/clubroll/pkg/jwtx"
)

// TokenService mints access/refresh pairs and exchanges a live refresh
// token for a fresh access token. The refresh token itself is never
// rotated on reissue and its expiry is never extended.
type TokenService struct {
	Codec    *jwtx.Codec
	Sessions session.Store

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login mints a token pair for the principal and records the refresh
// session. At most one session per principal may be live: if one is,
// Login fails with ErrSessionAlreadyActive and mints nothing durable.
func (s *TokenService) Login(ctx context.Context, p domain.Principal) (domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.Codec.Mint(p.ID, p.Role.String(), now, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("mint access token: %w", err)
	}

	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	err = s.Sessions.CreateRefresh(ctx, p.ID, cryptox.FingerprintToken(refresh), s.RefreshTTL)
	if err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			return domain.TokenPair{}, ErrSessionAlreadyActive
		}
		return domain.TokenPair{}, fmt.Errorf("create refresh session: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Reissue exchanges a presented refresh token for a new access token.
// The returned pair carries the presented refresh token unchanged, and
// the remaining session lifetime is reported so clients can anticipate
// the forced re-login. Every resolution failure collapses into
// ErrRefreshNotFound.
func (s *TokenService) Reissue(ctx context.Context, presentedRefresh string, role domain.Role) (domain.TokenPair, time.Duration, error) {
	if strings.TrimSpace(presentedRefresh) == "" {
		return domain.TokenPair{}, 0, ErrMalformedRefresh
	}

	fingerprint := cryptox.FingerprintToken(presentedRefresh)

	principalID, err := s.Sessions.ResolvePrincipal(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, session.ErrRefreshNotFound) {
			return domain.TokenPair{}, 0, ErrRefreshNotFound
		}
		return domain.TokenPair{}, 0, fmt.Errorf("resolve refresh session: %w", err)
	}

	remaining, err := s.Sessions.RemainingTTL(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, session.ErrRefreshNotFound) {
			return domain.TokenPair{}, 0, ErrRefreshNotFound
		}
		return domain.TokenPair{}, 0, fmt.Errorf("query session ttl: %w", err)
	}

	access, err := s.Codec.Mint(principalID, role.String(), time.Now().UTC(), s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, 0, fmt.Errorf("mint access token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: presentedRefresh,
		ExpiresIn:    s.AccessTTL,
	}, remaining, nil
}
