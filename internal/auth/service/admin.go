package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clubroll/clubroll/internal/auth/domain"
	"github.com/clubroll/clubroll/internal/auth/store"
	"github.com/clubroll/clubroll/pkg/cryptox"
	"github.com/clubroll/clubroll/pkg/idx"
)

// AdminAuthService authenticates club admins against the principal
// store and drives their token lifecycle through the auth facade.
// Admin sessions are keyed by username.
type AdminAuthService struct {
	Store store.Store
	Auth  *AuthService
}

// AdminLoginResult carries the minted pair plus the club profile the
// caller renders after login.
type AdminLoginResult struct {
	Pair     domain.TokenPair
	ClubName string
	ClubUniv string
}

// Login verifies the admin's password and opens a session. Unknown
// usernames and bad passwords are reported distinctly; a still-live
// previous session fails with ErrSessionAlreadyActive.
func (s *AdminAuthService) Login(ctx context.Context, username, password string) (AdminLoginResult, error) {
	admin, err := s.Store.Admins().GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AdminLoginResult{}, ErrPrincipalNotFound
		}
		return AdminLoginResult{}, fmt.Errorf("lookup admin: %w", err)
	}

	if err := cryptox.VerifyPassword(password, admin.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return AdminLoginResult{}, ErrInvalidCredentials
		}
		return AdminLoginResult{}, fmt.Errorf("verify password: %w", err)
	}

	pair, err := s.Auth.Login(ctx, domain.Principal{ID: admin.Username, Role: domain.RoleAdmin})
	if err != nil {
		return AdminLoginResult{}, err
	}

	return AdminLoginResult{
		Pair:     pair,
		ClubName: admin.ClubName,
		ClubUniv: admin.ClubUniv,
	}, nil
}

// Join registers a new admin account and returns its id.
func (s *AdminAuthService) Join(ctx context.Context, username, password, clubName, clubUniv string) (string, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	admin, err := domain.NewAdmin(idx.New().String(), username, hash, clubName, clubUniv, time.Now().UTC())
	if err != nil {
		return "", err
	}

	if err := s.Store.Admins().CreateAdmin(ctx, admin); err != nil {
		return "", err
	}
	return admin.ID, nil
}
