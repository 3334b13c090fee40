package auth

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.yml")

	s, err := NewStore(path)
	require.NoError(t, err)
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())

	require.NoError(t, s.SetTokens("access-1", "refresh-1"))
	assert.Equal(t, "access-1", s.AccessToken())
	assert.Equal(t, "refresh-1", s.RefreshToken())

	// A fresh store reads the persisted pair back.
	reloaded, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, "access-1", reloaded.AccessToken())
	assert.Equal(t, "refresh-1", reloaded.RefreshToken())
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.yml")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetTokens("a", "r"))

	require.NoError(t, s.Clear())
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing an already-clear store is fine.
	require.NoError(t, s.Clear())
}

func TestStore_FilePermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.yml")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetTokens("a", "r"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_CreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "tokens.yml")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetTokens("a", "r"))

	reloaded, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, "a", reloaded.AccessToken())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.yml")
	s, err := NewStore(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.SetTokens("a", "r")
		}()
		go func() {
			defer wg.Done()
			_ = s.AccessToken()
			_ = s.RefreshToken()
		}()
	}
	wg.Wait()

	assert.Equal(t, "a", s.AccessToken())
	assert.Equal(t, "r", s.RefreshToken())
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	got, err := TokenExpiry(signed)
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestTokenExpiry_Errors(t *testing.T) {
	t.Parallel()

	_, err := TokenExpiry("not-a-jwt")
	assert.Error(t, err)

	// Valid JWT but no exp claim.
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = TokenExpiry(signed)
	assert.Error(t, err)
}
