package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSessionActive is returned by CreateRefresh when the principal
	// already has a live refresh record. Exactly one concurrent login
	// may win; every other caller observes this error.
	ErrSessionActive = errors.New("session: active session already exists")

	// ErrRefreshNotFound covers every way a refresh value can fail to
	// resolve: never issued, already deleted, expired, or forged. The
	// cases are deliberately indistinguishable so the protocol never
	// leaks whether a guessed value once existed.
	ErrRefreshNotFound = errors.New("session: refresh token not found")
)

// Key namespaces. A principal's live session is owned by the principal
// key; the token key is the reverse index that lets an opaque presented
// value resolve back to its principal. Both are written and deleted in
// lockstep. Blacklist entries expire on their own and are never
// explicitly deleted.
const (
	RefreshKeyPrefix      = "refresh:"
	RefreshTokenKeyPrefix = "refresh:token:"
	BlacklistKeyPrefix    = "blacklist:access:"
)

// Store is the server-side session state: refresh-token records and the
// access-token blacklist. All methods operate on token fingerprints,
// never on raw opaque values. Implementations must make CreateRefresh
// atomic: two concurrent calls for one principal may not both succeed.
//
// Any error other than the sentinel values above is an infrastructure
// failure and must be treated fail-closed by callers.
type Store interface {
	// CreateRefresh registers a refresh record for principalID with the
	// given ttl, failing with ErrSessionActive if one is already live.
	CreateRefresh(ctx context.Context, principalID, fingerprint string, ttl time.Duration) error

	// ResolvePrincipal returns the principal owning the refresh record,
	// or ErrRefreshNotFound.
	ResolvePrincipal(ctx context.Context, fingerprint string) (string, error)

	// DeleteRefresh removes the refresh record. Idempotent: deleting an
	// absent record is not an error.
	DeleteRefresh(ctx context.Context, fingerprint string) error

	// RemainingTTL reports how long the refresh record has left, or
	// ErrRefreshNotFound once it has lapsed or been deleted.
	RemainingTTL(ctx context.Context, fingerprint string) (time.Duration, error)

	// Blacklist records a revoked access token for its remaining
	// lifetime. A non-positive remaining duration is a no-op: plain
	// expiry already rejects the token. Write-once: re-blacklisting
	// never extends an existing entry.
	Blacklist(ctx context.Context, fingerprint string, remaining time.Duration) error

	// IsBlacklisted reports whether the access token was revoked before
	// its natural expiry.
	IsBlacklisted(ctx context.Context, fingerprint string) (bool, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection, if any.
	Close() error
}
