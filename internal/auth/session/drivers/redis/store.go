package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clubroll/clubroll/internal/auth/session"
)

// createScript registers both halves of a refresh record atomically.
// The principal key is the single-session gate: if it exists, no part
// of the record is written and the login observes a conflict.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
    return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
redis.call('SET', KEYS[2], ARGV[3], 'PX', ARGV[2])
return 1
`)

// deleteScript removes the token index and, when the principal key
// still points at this fingerprint, the principal key too. The value
// check keeps a slow logout from tearing down a session the principal
// re-established in the meantime.
var deleteScript = redis.NewScript(`
redis.call('DEL', KEYS[1])
if redis.call('GET', KEYS[2]) == ARGV[1] then
    redis.call('DEL', KEYS[2])
end
return 1
`)

// Config holds the Redis connection parameters.
type Config struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// Store implements session.Store on a Redis instance. Redis provides
// the two properties the session core relies on: per-key TTL and
// atomic scripted writes.
type Store struct {
	rdb *redis.Client
}

// NewStore connects to Redis and verifies the connection.
func NewStore(cfg Config) (*Store, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("session: redis ping failed: %w", err)
	}

	return &Store{rdb: rdb}, nil
}

// NewStoreWithClient wraps an existing client. Used by tests that
// manage the client lifecycle themselves.
func NewStoreWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) CreateRefresh(ctx context.Context, principalID, fingerprint string, ttl time.Duration) error {
	created, err := createScript.Run(ctx, s.rdb,
		[]string{refreshKey(principalID), refreshTokenKey(fingerprint)},
		fingerprint, ttl.Milliseconds(), principalID,
	).Int()
	if err != nil {
		return fmt.Errorf("session: create refresh: %w", err)
	}
	if created == 0 {
		return session.ErrSessionActive
	}
	return nil
}

func (s *Store) ResolvePrincipal(ctx context.Context, fingerprint string) (string, error) {
	principalID, err := s.rdb.Get(ctx, refreshTokenKey(fingerprint)).Result()
	if errors.Is(err, redis.Nil) {
		return "", session.ErrRefreshNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session: resolve principal: %w", err)
	}
	return principalID, nil
}

func (s *Store) DeleteRefresh(ctx context.Context, fingerprint string) error {
	principalID, err := s.rdb.Get(ctx, refreshTokenKey(fingerprint)).Result()
	if errors.Is(err, redis.Nil) {
		return nil // already gone
	}
	if err != nil {
		return fmt.Errorf("session: delete refresh: %w", err)
	}

	err = deleteScript.Run(ctx, s.rdb,
		[]string{refreshTokenKey(fingerprint), refreshKey(principalID)},
		fingerprint,
	).Err()
	if err != nil {
		return fmt.Errorf("session: delete refresh: %w", err)
	}
	return nil
}

func (s *Store) RemainingTTL(ctx context.Context, fingerprint string) (time.Duration, error) {
	ttl, err := s.rdb.PTTL(ctx, refreshTokenKey(fingerprint)).Result()
	if err != nil {
		return 0, fmt.Errorf("session: remaining ttl: %w", err)
	}
	// PTTL reports -2 for a missing key and -1 for a key without
	// expiry; a refresh record always carries one, so both mean the
	// session is gone.
	if ttl < 0 {
		return 0, session.ErrRefreshNotFound
	}
	return ttl, nil
}

func (s *Store) Blacklist(ctx context.Context, fingerprint string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	// SETNX keeps the earliest entry: re-blacklisting must never
	// extend the TTL past the token's own expiry.
	err := s.rdb.SetNX(ctx, blacklistKey(fingerprint), "blacklisted", remaining).Err()
	if err != nil {
		return fmt.Errorf("session: blacklist: %w", err)
	}
	return nil
}

func (s *Store) IsBlacklisted(ctx context.Context, fingerprint string) (bool, error) {
	n, err := s.rdb.Exists(ctx, blacklistKey(fingerprint)).Result()
	if err != nil {
		return false, fmt.Errorf("session: blacklist lookup: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func refreshKey(principalID string) string {
	return session.RefreshKeyPrefix + principalID
}

func refreshTokenKey(fingerprint string) string {
	return session.RefreshTokenKeyPrefix + fingerprint
}

func blacklistKey(fingerprint string) string {
	return session.BlacklistKeyPrefix + fingerprint
}
