package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Validation failures surfaced by the factory functions. The HTTP layer
// maps all of these to 400.
var (
	ErrUsernameTooShort = errors.New("domain: username must be at least 4 characters")
	ErrPasswordTooWeak  = errors.New("domain: password must be at least 8 characters with a letter and a digit")
	ErrClubNameRequired = errors.New("domain: club name must not be empty")
)

// Admin is a club administrator. Each admin manages exactly one club,
// so the club identity is carried on the admin row.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	ClubName     string
	ClubUniv     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAdmin validates the signup input and builds an Admin. The password
// hash is produced by the caller; only its presence is checked here.
func NewAdmin(id, username, passwordHash, clubName, clubUniv string, now time.Time) (Admin, error) {
	username = strings.TrimSpace(username)
	if len(username) < 4 {
		return Admin{}, ErrUsernameTooShort
	}
	if passwordHash == "" {
		return Admin{}, ErrPasswordTooWeak
	}
	clubName = strings.TrimSpace(clubName)
	if clubName == "" {
		return Admin{}, ErrClubNameRequired
	}

	return Admin{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		ClubName:     clubName,
		ClubUniv:     strings.TrimSpace(clubUniv),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidatePassword checks the raw password shape before it is hashed:
// minimum length 8 with at least one letter and one digit.
func ValidatePassword(raw string) error {
	if len(raw) < 8 {
		return ErrPasswordTooWeak
	}
	var hasLetter, hasDigit bool
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordTooWeak
	}
	return nil
}
