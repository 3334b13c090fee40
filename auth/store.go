// Package auth persists the API token pair and inspects access-token
// lifetimes.
//
// The store is the single owner of the access/refresh pair: the API client
// reads through it and rotates tokens on refresh, everything else only
// reads. A mutex guards the pair because the client may be used from many
// goroutines at once.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"
)

// Storage keys, kept stable so existing token files survive upgrades.
const (
	accessKey  = "trading_journal_access"
	refreshKey = "trading_journal_refresh"
)

// Store holds the token pair in memory and mirrors it to a YAML file.
type Store struct {
	mu      sync.Mutex
	path    string
	access  string
	refresh string
}

// NewStore loads any previously saved tokens from path. A missing file is
// not an error; it just means no session.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var kv map[string]string
	if err := yaml.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	s.access = kv[accessKey]
	s.refresh = kv[refreshKey]
	return s, nil
}

// AccessToken returns the current access token, or "" when logged out.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// RefreshToken returns the current refresh token, or "" when logged out.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// SetTokens overwrites both tokens and persists them.
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	return s.save()
}

// Clear removes both tokens and deletes the token file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// save writes the pair under the fixed keys. Caller holds the lock.
func (s *Store) save() error {
	data, err := yaml.Marshal(map[string]string{
		accessKey:  s.access,
		refreshKey: s.refresh,
	})
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
	}
	// Tokens are credentials; keep the file private to the user.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// TokenExpiry reads the exp claim from a JWT without verifying its
// signature. The client has no signing key; this is informational only
// (whoami output, expiry warnings), never an auth decision.
func TokenExpiry(token string) (time.Time, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiry claim")
	}
	return exp.Time, nil
}
