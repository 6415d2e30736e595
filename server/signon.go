package server

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-rdp-session/token/jwt"
)

// signOns tracks the unexpired access tokens issued to each user's current
// sign-on so that ending the sign-on can revoke them.
type signOns struct {
	mu     sync.Mutex
	tokens map[string]map[string]time.Time // username -> jti -> expiry
}

func newSignOns() *signOns {
	return &signOns{tokens: map[string]map[string]time.Time{}}
}

func (o *signOns) issued(username string, tok *jwt.AccessToken) {
	now := jwt.NowTimeFunc()
	o.mu.Lock()
	defer o.mu.Unlock()
	held := o.tokens[username]
	if held == nil {
		held = map[string]time.Time{}
		o.tokens[username] = held
	}
	for jti, exp := range held {
		if exp.Before(now) {
			delete(held, jti)
		}
	}
	held[tok.ID] = tok.ExpiresAt
}

// end forgets username's sign-on and returns the tokens it held.
func (o *signOns) end(username string) map[string]time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	held := o.tokens[username]
	delete(o.tokens, username)
	return held
}

// endSignOn revokes every access token issued to username and drops its
// refresh token.
func (s *Server) endSignOn(username string) {
	for jti, exp := range s.signOns.end(username) {
		s.revokeAccessToken(jti, exp)
	}
	if err := s.refresh.DeleteForUser(username); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("Failed to end sign-on")
	}
}

func (s *Server) revokeAccessToken(jti string, exp time.Time) {
	if err := s.revoked.Revoke(jti, exp); err != nil {
		s.logger.Warn().Err(err).Str("jti", jti).Msg("Failed to record revoked token")
	}
}

// purgeRevoked drops expired entries from the revocation list until done is closed.
func (s *Server) purgeRevoked(done <-chan struct{}) {
	ticker := time.NewTicker(s.purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if n := s.revoked.Purge(jwt.NowTimeFunc()); n > 0 {
				s.logger.Debug().Int("count", n).Msg("Purged revoked tokens")
			}
		}
	}
}
