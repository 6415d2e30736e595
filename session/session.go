package session

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-rdp-session/token/jwt"
	xoauth2 "golang.org/x/oauth2"
)

// Session holds the bearer token obtained by Manager.Open. It is only created
// and mutated by its Manager; callers read it through the accessors.
type Session struct {
	id    string
	owner *Manager
	creds Credentials

	refreshMu sync.Mutex // serialises token refreshes

	mu         sync.RWMutex
	state      State
	token      *xoauth2.Token
	obtainedAt time.Time
	expiresIn  time.Duration
	tokenExp   time.Time // exp claim of a JWT access token, zero if unknown
}

// ID identifies the session in logs. It is not sent to the platform.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.RefreshToken
}

// ExpiresIn is the lifetime reported by the token endpoint.
func (s *Session) ExpiresIn() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresIn
}

func (s *Session) ObtainedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.obtainedAt
}

// Expiry is the earlier of obtained_at + expires_in and the JWT exp claim.
// Zero means the platform gave no lifetime.
func (s *Session) Expiry() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiryLocked()
}

func (s *Session) expiryLocked() time.Time {
	var expiry time.Time
	if s.expiresIn > 0 {
		expiry = s.obtainedAt.Add(s.expiresIn)
	}
	if !s.tokenExp.IsZero() && (expiry.IsZero() || s.tokenExp.Before(expiry)) {
		expiry = s.tokenExp
	}
	return expiry
}

// Stale reports whether the token expires within margin of now.
func (s *Session) Stale(now time.Time, margin time.Duration) bool {
	expiry := s.Expiry()
	if expiry.IsZero() {
		return false
	}
	return !now.Add(margin).Before(expiry)
}

// Token returns a copy of the held token, or nil when none is held.
func (s *Session) Token() *xoauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil
	}
	t := *s.token
	return &t
}

func (s *Session) setState(state State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = state
	return prev
}

// transition moves the session to state only if it is currently in from.
func (s *Session) transition(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

// install replaces the held token of a Pending or Open session and reports
// whether it did. An empty refresh token keeps the old one.
func (s *Session) install(t *xoauth2.Token, obtainedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Pending && s.state != Open {
		return false
	}
	if t.RefreshToken == "" && s.token != nil {
		t.RefreshToken = s.token.RefreshToken
	}
	s.token = t
	s.obtainedAt = obtainedAt
	s.expiresIn = time.Duration(t.ExpiresIn) * time.Second
	s.tokenExp, _ = jwt.Expiry(t.AccessToken)
	s.state = Open
	return true
}

// reject moves an Open session to Error, provided it still holds the refresh
// token the platform turned down.
func (s *Session) reject(refreshToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Open || s.token == nil || s.token.RefreshToken != refreshToken {
		return false
	}
	s.state = Error
	return true
}

// snapshot returns the state and a copy of the token under one lock.
func (s *Session) snapshot() (State, *xoauth2.Token) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return s.state, nil
	}
	t := *s.token
	return s.state, &t
}
