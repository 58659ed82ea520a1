package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubroll/clubroll/internal/auth/domain"
	"github.com/clubroll/clubroll/internal/auth/store"
	"github.com/clubroll/clubroll/pkg/cryptox"
	"github.com/clubroll/clubroll/pkg/idx"
)

// UserAuthService authenticates end users against the principal store.
// User sessions are keyed by email.
type UserAuthService struct {
	Store store.Store
	Auth  *AuthService
}

// UserLoginResult carries the minted pair plus the profile name.
type UserLoginResult struct {
	Pair domain.TokenPair
	Name string
}

// Login verifies the user's password and opens a session.
func (s *UserAuthService) Login(ctx context.Context, email, password string) (UserLoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return UserLoginResult{}, ErrPrincipalNotFound
		}
		return UserLoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return UserLoginResult{}, ErrInvalidCredentials
		}
		return UserLoginResult{}, fmt.Errorf("verify password: %w", err)
	}

	pair, err := s.Auth.Login(ctx, domain.Principal{ID: user.Email, Role: domain.RoleUser})
	if err != nil {
		return UserLoginResult{}, err
	}

	return UserLoginResult{Pair: pair, Name: user.Name}, nil
}

// Join registers a new user account and returns its id.
func (s *UserAuthService) Join(ctx context.Context, email, password, name string) (string, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user, err := domain.NewUser(idx.New().String(), email, hash, name, time.Now().UTC())
	if err != nil {
		return "", err
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}
