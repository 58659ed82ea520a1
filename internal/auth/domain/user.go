package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidEmail = errors.New("domain: invalid email address")
	ErrNameRequired = errors.New("domain: name must not be empty")
)

// User is an end user applying to clubs.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser validates the signup input and builds a User.
func NewUser(id, email, passwordHash, name string, now time.Time) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := ValidateEmail(email); err != nil {
		return User{}, err
	}
	if passwordHash == "" {
		return User{}, ErrPasswordTooWeak
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, ErrNameRequired
	}

	return User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateEmail checks the basic local@domain.tld shape. Anything
// stricter belongs to the mail round-trip, not to parsing.
func ValidateEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	host := email[at+1:]
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return ErrInvalidEmail
	}
	return nil
}
