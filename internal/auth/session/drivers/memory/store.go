package memory

import (
	"context"
	"sync"
	"time"

	"github.com/clubroll/clubroll/internal/auth/session"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Store is an in-process session.Store. It mirrors the Redis driver's
// semantics (atomic create, lazy TTL expiry, idempotent delete) behind
// a single mutex and backs unit tests and local development without a
// Redis instance.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	// Now is the clock used for TTL decisions. Tests override it to
	// step through expiry without sleeping.
	Now func() time.Time
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		Now:     time.Now,
	}
}

func (s *Store) CreateRefresh(ctx context.Context, principalID, fingerprint string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	if e, ok := s.entries[refreshKey(principalID)]; ok && !e.expired(now) {
		return session.ErrSessionActive
	}

	expires := now.Add(ttl)
	s.entries[refreshKey(principalID)] = entry{value: fingerprint, expiresAt: expires}
	s.entries[refreshTokenKey(fingerprint)] = entry{value: principalID, expiresAt: expires}
	return nil
}

func (s *Store) ResolvePrincipal(ctx context.Context, fingerprint string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[refreshTokenKey(fingerprint)]
	if !ok || e.expired(s.Now()) {
		return "", session.ErrRefreshNotFound
	}
	return e.value, nil
}

func (s *Store) DeleteRefresh(ctx context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[refreshTokenKey(fingerprint)]
	if !ok {
		return nil
	}
	delete(s.entries, refreshTokenKey(fingerprint))

	if owner, ok := s.entries[refreshKey(e.value)]; ok && owner.value == fingerprint {
		delete(s.entries, refreshKey(e.value))
	}
	return nil
}

func (s *Store) RemainingTTL(ctx context.Context, fingerprint string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	e, ok := s.entries[refreshTokenKey(fingerprint)]
	if !ok || e.expired(now) {
		return 0, session.ErrRefreshNotFound
	}
	return e.expiresAt.Sub(now), nil
}

func (s *Store) Blacklist(ctx context.Context, fingerprint string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	if e, ok := s.entries[blacklistKey(fingerprint)]; ok && !e.expired(now) {
		return nil // write-once
	}
	s.entries[blacklistKey(fingerprint)] = entry{value: "blacklisted", expiresAt: now.Add(remaining)}
	return nil
}

func (s *Store) IsBlacklisted(ctx context.Context, fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[blacklistKey(fingerprint)]
	return ok && !e.expired(s.Now()), nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// blacklistExpiry exposes an entry's deadline to in-package tests.
func (s *Store) blacklistExpiry(fingerprint string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[blacklistKey(fingerprint)]
	if !ok {
		return time.Time{}, false
	}
	return e.expiresAt, true
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
