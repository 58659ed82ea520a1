package jwtx_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clubroll/clubroll/pkg/jwtx"
)

func key(seed byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestNewCodecValidation(t *testing.T) {
	_, err := jwtx.NewCodec("not base64!!!", "iss")
	require.Error(t, err)

	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	_, err = jwtx.NewCodec(short, "iss")
	require.ErrorIs(t, err, jwtx.ErrWeakKey)

	_, err = jwtx.NewCodec(key(0), "")
	require.Error(t, err)
}

func TestMintAndParse(t *testing.T) {
	codec, err := jwtx.NewCodec(key(0), "clubroll-auth")
	require.NoError(t, err)

	now := time.Now().UTC()
	raw, err := codec.Mint("robotics", "ROLE_ADMIN", now, time.Hour)
	require.NoError(t, err)

	claims, err := codec.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "robotics", claims.Subject)
	require.Equal(t, "ROLE_ADMIN", claims.Role)
	require.Equal(t, "clubroll-auth", claims.Issuer)
	require.NotEmpty(t, claims.ID)
}

func TestParseExpired(t *testing.T) {
	codec, err := jwtx.NewCodec(key(0), "clubroll-auth")
	require.NoError(t, err)

	raw, err := codec.Mint("robotics", "ROLE_ADMIN", time.Now().UTC().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = codec.Parse(raw)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	// Logout still needs the claims of a lapsed token.
	claims, err := codec.ParseAllowExpired(raw)
	require.NoError(t, err)
	require.Equal(t, "robotics", claims.Subject)
	require.Negative(t, claims.Remaining(time.Now().UTC()))
}

func TestParseRejectsTampering(t *testing.T) {
	codec, err := jwtx.NewCodec(key(0), "clubroll-auth")
	require.NoError(t, err)

	raw, err := codec.Mint("robotics", "ROLE_ADMIN", time.Now().UTC(), time.Hour)
	require.NoError(t, err)

	_, err = codec.Parse(raw + "x")
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	_, err = codec.Parse("")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
	_, err = codec.Parse("just.garbage")
	require.ErrorIs(t, err, jwtx.ErrMalformed)

	// Signed with a different key.
	other, err := jwtx.NewCodec(key(100), "clubroll-auth")
	require.NoError(t, err)
	forged, err := other.Mint("robotics", "ROLE_ADMIN", time.Now().UTC(), time.Hour)
	require.NoError(t, err)
	_, err = codec.Parse(forged)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestParseIssuerMismatchBeatsSignature(t *testing.T) {
	codec, err := jwtx.NewCodec(key(0), "clubroll-auth")
	require.NoError(t, err)

	// Wrong issuer AND wrong key: the issuer mismatch is reported,
	// independent of whether the signature verifies here.
	other, err := jwtx.NewCodec(key(100), "staging-auth")
	require.NoError(t, err)
	foreign, err := other.Mint("robotics", "ROLE_ADMIN", time.Now().UTC(), time.Hour)
	require.NoError(t, err)

	_, err = codec.Parse(foreign)
	require.ErrorIs(t, err, jwtx.ErrIssuer)

	// Wrong issuer, correct key.
	sameKey, err := jwtx.NewCodec(key(0), "staging-auth")
	require.NoError(t, err)
	crossed, err := sameKey.Mint("robotics", "ROLE_ADMIN", time.Now().UTC(), time.Hour)
	require.NoError(t, err)

	_, err = codec.Parse(crossed)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}
