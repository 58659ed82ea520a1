package store

import (
	"context"
	"errors"

	"github.com/clubroll/clubroll/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the principal database: the credential records the token
// core resolves principals from. Concrete drivers (sqlite) implement
// it. It exposes sub-repositories to keep concerns tidy and testable.
type Store interface {
	Admins() Admins
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Admins interface {
	// GetAdminByUsername is used during login and reissue.
	GetAdminByUsername(ctx context.Context, username string) (domain.Admin, error)

	// CreateAdmin inserts a new admin row (id is a ULID provided by the
	// app). Returns ErrAlreadyExists when the username is taken.
	CreateAdmin(ctx context.Context, a domain.Admin) error
}

type Users interface {
	// GetUserByEmail is used during login and reissue.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user row. Returns ErrAlreadyExists when
	// the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
}
