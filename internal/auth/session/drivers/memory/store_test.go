package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clubroll/clubroll/internal/auth/session"
)

func newClockedStore(base time.Time) (*Store, *time.Time) {
	s := NewStore()
	now := base
	s.Now = func() time.Time { return now }
	return s, &now
}

func TestCreateRefreshSingleSession(t *testing.T) {
	s, now := newClockedStore(time.Now())
	ctx := context.Background()

	require.NoError(t, s.CreateRefresh(ctx, "alice", "fp1", time.Hour))
	require.ErrorIs(t, s.CreateRefresh(ctx, "alice", "fp2", time.Hour), session.ErrSessionActive)

	// A different principal is unaffected.
	require.NoError(t, s.CreateRefresh(ctx, "bob", "fp3", time.Hour))

	// Once the record lapses, the slot reopens.
	*now = now.Add(2 * time.Hour)
	require.NoError(t, s.CreateRefresh(ctx, "alice", "fp4", time.Hour))
}

func TestResolveAndTTL(t *testing.T) {
	s, now := newClockedStore(time.Now())
	ctx := context.Background()

	require.NoError(t, s.CreateRefresh(ctx, "alice", "fp1", time.Hour))

	pid, err := s.ResolvePrincipal(ctx, "fp1")
	require.NoError(t, err)
	require.Equal(t, "alice", pid)

	ttl, err := s.RemainingTTL(ctx, "fp1")
	require.NoError(t, err)
	require.Equal(t, time.Hour, ttl)

	*now = now.Add(40 * time.Minute)
	ttl, err = s.RemainingTTL(ctx, "fp1")
	require.NoError(t, err)
	require.Equal(t, 20*time.Minute, ttl)

	*now = now.Add(30 * time.Minute)
	_, err = s.ResolvePrincipal(ctx, "fp1")
	require.ErrorIs(t, err, session.ErrRefreshNotFound)
	_, err = s.RemainingTTL(ctx, "fp1")
	require.ErrorIs(t, err, session.ErrRefreshNotFound)
}

func TestResolveUnknownFingerprint(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.ResolvePrincipal(ctx, "never-stored")
	require.ErrorIs(t, err, session.ErrRefreshNotFound)
}

func TestDeleteRefreshIdempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.CreateRefresh(ctx, "alice", "fp1", time.Hour))
	require.NoError(t, s.DeleteRefresh(ctx, "fp1"))

	_, err := s.ResolvePrincipal(ctx, "fp1")
	require.ErrorIs(t, err, session.ErrRefreshNotFound)

	// Deleting again, or deleting something never stored, is fine.
	require.NoError(t, s.DeleteRefresh(ctx, "fp1"))
	require.NoError(t, s.DeleteRefresh(ctx, "never-stored"))

	// The principal slot reopened.
	require.NoError(t, s.CreateRefresh(ctx, "alice", "fp2", time.Hour))
}

func TestDeleteRefreshKeepsNewerSession(t *testing.T) {
	s, now := newClockedStore(time.Now())
	ctx := context.Background()

	require.NoError(t, s.CreateRefresh(ctx, "alice", "fp1", time.Hour))

	// Session lapses; alice logs in again and gets fp2.
	*now = now.Add(2 * time.Hour)
	require.NoError(t, s.CreateRefresh(ctx, "alice", "fp2", time.Hour))

	// A late logout presenting the stale fp1 must not tear down fp2.
	require.NoError(t, s.DeleteRefresh(ctx, "fp1"))

	pid, err := s.ResolvePrincipal(ctx, "fp2")
	require.NoError(t, err)
	require.Equal(t, "alice", pid)
}

func TestBlacklist(t *testing.T) {
	s, now := newClockedStore(time.Now())
	ctx := context.Background()

	revoked, err := s.IsBlacklisted(ctx, "fp1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, s.Blacklist(ctx, "fp1", 30*time.Minute))

	revoked, err = s.IsBlacklisted(ctx, "fp1")
	require.NoError(t, err)
	require.True(t, revoked)

	// The entry expires with the token's own lifetime.
	*now = now.Add(31 * time.Minute)
	revoked, err = s.IsBlacklisted(ctx, "fp1")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestBlacklistNoopForExpiredToken(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Blacklist(ctx, "fp1", 0))
	require.NoError(t, s.Blacklist(ctx, "fp2", -time.Minute))

	_, ok := s.blacklistExpiry("fp1")
	require.False(t, ok)
	_, ok = s.blacklistExpiry("fp2")
	require.False(t, ok)
}

func TestBlacklistWriteOnce(t *testing.T) {
	s, _ := newClockedStore(time.Now())
	ctx := context.Background()

	require.NoError(t, s.Blacklist(ctx, "fp1", 10*time.Minute))
	first, ok := s.blacklistExpiry("fp1")
	require.True(t, ok)

	// Re-blacklisting must not push the deadline past the token's own
	// expiry.
	require.NoError(t, s.Blacklist(ctx, "fp1", time.Hour))
	second, ok := s.blacklistExpiry("fp1")
	require.True(t, ok)
	require.Equal(t, first, second)
}
