package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
		"hash should be in PHC format")
	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6, "PHC hash should have 6 parts")
	require.NotEmpty(t, parts[4], "salt should not be empty")
	require.NotEmpty(t, parts[5], "hash should not be empty")
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("samepassword")
	require.NoError(t, err)
	hash2, err := HashPassword("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "same password must hash differently")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("s3cretpass", hash))
	require.ErrorIs(t, VerifyPassword("wrongpass1", hash), ErrPasswordMismatch)
	require.ErrorIs(t, VerifyPassword("", hash), ErrPasswordMismatch)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	require.Error(t, VerifyPassword("whatever", "not-a-phc-hash"))
	require.Error(t, VerifyPassword("whatever", "$bcrypt$v=19$m=1,t=2,p=1$c2FsdA$aGFzaA"))
}
