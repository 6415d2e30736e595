package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const defaultTokenLength = 32

// Manager handles refresh token creation, lookup and rotation.
// A user holds at most one refresh token; creating a new one displaces the old.
type Manager struct {
	repo   Repo
	expiry time.Duration
}

func NewManager(repo Repo, expiry time.Duration) *Manager {
	return &Manager{
		repo:   repo,
		expiry: expiry,
	}
}

// Create generates a new refresh token for username, replacing any existing one.
func (m *Manager) Create(clientID, username, scope string) (*string, error) {
	if err := m.DeleteForUser(username); err != nil {
		return nil, err
	}

	tokenBytes := make([]byte, defaultTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:    tokenStr,
		Username: username,
		ClientID: clientID,
		Scope:    scope,
		Iat:      NowTimeFunc(),
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &tokenStr, nil
}

func (m *Manager) Get(token string) (*StoredRefreshToken, error) {
	return m.repo.Get(token)
}

func (m *Manager) Delete(token string) error {
	return m.repo.Delete(token)
}

// Active reports whether username holds an unexpired refresh token.
func (m *Manager) Active(username string) bool {
	rt, err := m.repo.GetByUsername(username)
	return err == nil && rt != nil && !m.IsExpired(rt)
}

// DeleteForUser removes the refresh token held by username, if any.
func (m *Manager) DeleteForUser(username string) error {
	existing, err := m.repo.GetByUsername(username)
	if err != nil || existing == nil {
		return nil
	}
	if err := m.repo.Delete(existing.Token); err != nil {
		return fmt.Errorf("failed to delete existing refresh token: %w", err)
	}
	return nil
}

// IsExpired reports whether rt is older than the configured lifetime. Zero means no expiry.
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	if m.expiry == 0 {
		return false
	}
	return NowTimeFunc().Sub(rt.Iat) > m.expiry
}
