package token

import (
	"errors"
	"sync"
	"time"
)

var ErrMissingTokenID = errors.New("access token has no jti")

// RevocationList holds the ids of access tokens that were revoked before
// they expired. Entries only matter until the token's own expiry.
type RevocationList interface {
	Revoke(jti string, expiresAt time.Time) error
	Revoked(jti string) bool
	// Purge drops entries whose token expired before now and reports how many went.
	Purge(now time.Time) int
}

type MemoryRevocationList struct {
	mu      sync.RWMutex
	expires map[string]time.Time
}

var _ RevocationList = (*MemoryRevocationList)(nil)

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{expires: map[string]time.Time{}}
}

func (l *MemoryRevocationList) Revoke(jti string, expiresAt time.Time) error {
	if jti == "" {
		return ErrMissingTokenID
	}
	l.mu.Lock()
	if cur, ok := l.expires[jti]; !ok || expiresAt.After(cur) {
		l.expires[jti] = expiresAt
	}
	l.mu.Unlock()
	return nil
}

func (l *MemoryRevocationList) Revoked(jti string) bool {
	if jti == "" {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.expires[jti]
	return ok
}

func (l *MemoryRevocationList) Purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for jti, exp := range l.expires {
		if exp.Before(now) {
			delete(l.expires, jti)
			n++
		}
	}
	return n
}

// Len is the number of tokens currently held.
func (l *MemoryRevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.expires)
}
