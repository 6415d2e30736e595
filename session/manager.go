package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-rdp-session/endpoints"
	"github.com/jrsteele09/go-rdp-session/internal/config"
	"github.com/jrsteele09/go-rdp-session/oauth2"
	"github.com/jrsteele09/go-rdp-session/oauthmodel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// maxBodySize bounds how much of a response body is read into memory.
const maxBodySize = 64 << 20

// Manager acquires, holds and releases the bearer token of a single session
// and dispatches authenticated requests with it.
type Manager struct {
	endpoints     endpoints.Endpoints
	httpClient    *http.Client
	logger        zerolog.Logger
	limiter       *rate.Limiter
	scope         string
	takeExclusive bool
	autoRefresh   bool
	refreshMargin time.Duration
	nowTime       func() time.Time // injectable for testing

	mu      sync.RWMutex
	current *Session
	opening *Session
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithHTTPClient sets the client used for every call. Timeouts belong here.
func WithHTTPClient(c *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = c
	}
}

func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithRateLimit makes Dispatch wait on l before each data request.
func WithRateLimit(l *rate.Limiter) ManagerOption {
	return func(m *Manager) {
		m.limiter = l
	}
}

// WithScope sets the scope used when Credentials carry none.
func WithScope(scope string) ManagerOption {
	return func(m *Manager) {
		m.scope = scope
	}
}

// WithExclusiveSignOn controls the takeExclusiveSignOnControl form field.
func WithExclusiveSignOn(exclusive bool) ManagerOption {
	return func(m *Manager) {
		m.takeExclusive = exclusive
	}
}

// WithAutoRefresh makes Dispatch refresh the token first when it expires
// within margin. Without it, expiry is the caller's concern.
func WithAutoRefresh(margin time.Duration) ManagerOption {
	return func(m *Manager) {
		m.autoRefresh = true
		m.refreshMargin = margin
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager creates a Manager for the given endpoints.
func NewManager(ep endpoints.Endpoints, opts ...ManagerOption) (*Manager, error) {
	if err := ep.Validate(); err != nil {
		return nil, fmt.Errorf("[session NewManager] %w", err)
	}
	m := &Manager{
		endpoints:     ep,
		httpClient:    http.DefaultClient,
		logger:        log.Logger,
		scope:         oauth2.DefaultScope,
		takeExclusive: true,
		nowTime:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.httpClient == nil {
		m.httpClient = http.DefaultClient
	}
	return m, nil
}

// ConfigOptions translates configuration into manager options.
func ConfigOptions(cfg config.Config) []ManagerOption {
	opts := []ManagerOption{
		WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		WithScope(cfg.GetScope()),
		WithExclusiveSignOn(cfg.GetTakeExclusiveSignOnControl()),
	}
	if margin := cfg.GetRefreshMargin(); margin > 0 {
		opts = append(opts, WithAutoRefresh(margin))
	}
	if limit := cfg.GetRateLimit(); limit > 0 {
		burst := int(limit)
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, WithRateLimit(rate.NewLimiter(rate.Limit(limit), burst)))
	}
	return opts
}

// NewManagerFromConfig builds a Manager from configuration. Options are applied
// after the configured values and may override them.
func NewManagerFromConfig(cfg config.Config, opts ...ManagerOption) (*Manager, error) {
	ep := endpoints.WithPaths(cfg.GetBaseURL(), cfg.GetTokenPath(), cfg.GetRevokePath())
	return NewManager(ep, append(ConfigOptions(cfg), opts...)...)
}

// Endpoints returns the URLs the manager talks to.
func (m *Manager) Endpoints() endpoints.Endpoints {
	return m.endpoints
}

// Current returns the session the manager holds, or nil.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// State reports Pending while an Open is in flight, otherwise the state of the
// current session, or Closed when there is none.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.opening != nil {
		return Pending
	}
	if m.current == nil {
		return Closed
	}
	return m.current.State()
}

// Open authenticates with the password grant and returns an Open session.
// On failure the error is an *AuthError and no session is returned; a session
// opened earlier by this manager is left as it was. On success that earlier
// session is superseded and moves to Closed without being revoked.
func (m *Manager) Open(ctx context.Context, creds Credentials) (*Session, error) {
	if err := creds.Validate(); err != nil {
		TokenRequestsTotal.WithLabelValues(string(oauth2.PasswordGrant), outcomeInvalid).Inc()
		return nil, &AuthError{Err: err}
	}
	if creds.Scope == "" {
		creds.Scope = m.scope
	}

	s := &Session{id: uuid.New().String(), owner: m, creds: creds, state: Pending}
	m.mu.Lock()
	m.opening = s
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		if m.opening == s {
			m.opening = nil
		}
		m.mu.Unlock()
	}()

	logger := m.logger.With().Str("session_id", s.id).Str("username", creds.Username).Logger()

	req := oauthmodel.TokenRequest{
		GrantType:                  oauth2.PasswordGrant,
		Username:                   creds.Username,
		Password:                   creds.Password,
		Scope:                      creds.Scope,
		TakeExclusiveSignOnControl: m.takeExclusive,
	}
	if err := m.acquire(ctx, s, req); err != nil {
		s.setState(Closed)
		logger.Err(err).Msg("Failed to open session")
		return nil, err
	}

	m.mu.Lock()
	prev := m.current
	m.current = s
	m.mu.Unlock()
	OpenSessions.Inc()

	if prev != nil && prev.transition(Open, Closed) {
		OpenSessions.Dec()
		logger.Debug().Str("superseded_session_id", prev.id).Msg("Previous session superseded")
	}

	logger.Info().Dur("expires_in", s.ExpiresIn()).Msg("Session opened")
	return s, nil
}

// Refresh exchanges the session's refresh token for a new access token.
// If the platform rejects the refresh token (4xx) the session moves to Error;
// server errors and transport failures leave it unchanged. Refreshes of one
// session are serialised.
func (m *Manager) Refresh(ctx context.Context, s *Session) error {
	if err := m.owns(s); err != nil {
		return &AuthError{Err: err}
	}
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return m.refreshLocked(ctx, s)
}

// refreshIfStale refreshes s unless another caller already replaced the
// refresh token observed before waiting.
func (m *Manager) refreshIfStale(ctx context.Context, s *Session, observed string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if s.RefreshToken() != observed {
		return nil
	}
	return m.refreshLocked(ctx, s)
}

func (m *Manager) refreshLocked(ctx context.Context, s *Session) error {
	state, tok := s.snapshot()
	if state != Open {
		return &AuthError{Err: ErrSessionNotOpen}
	}
	if tok == nil || tok.RefreshToken == "" {
		return &AuthError{Err: ErrNoRefreshToken}
	}

	req := oauthmodel.TokenRequest{
		GrantType:                  oauth2.RefreshTokenGrant,
		Username:                   s.creds.Username,
		RefreshToken:               tok.RefreshToken,
		TakeExclusiveSignOnControl: m.takeExclusive,
	}
	err := m.acquire(ctx, s, req)
	if err != nil {
		var ae *AuthError
		if errors.As(err, &ae) && ae.StatusCode >= 400 && ae.StatusCode < 500 {
			if s.reject(tok.RefreshToken) {
				OpenSessions.Dec()
			}
		}
		m.logger.Err(err).Str("session_id", s.id).Msg("Failed to refresh session")
		return err
	}
	m.logger.Debug().Str("session_id", s.id).Dur("expires_in", s.ExpiresIn()).Msg("Session refreshed")
	return nil
}

// Close revokes the session's access token. On success the session moves to
// Closed; on failure the error is a *RequestError and the state is unchanged.
func (m *Manager) Close(ctx context.Context, s *Session) error {
	if err := m.owns(s); err != nil {
		return &RequestError{Err: err}
	}
	state, tok := s.snapshot()
	if state != Open || tok == nil {
		return &RequestError{Err: ErrSessionNotOpen}
	}

	revoke := oauthmodel.RevokeRequest{Token: tok.AccessToken}
	status, body, header, err := m.postForm(ctx, m.endpoints.Revoke, revoke.Form(), s.creds)
	if err != nil {
		RevocationsTotal.WithLabelValues(outcomeTransport).Inc()
		rerr := &RequestError{Err: &TransportError{Op: "revoke", URL: m.endpoints.Revoke, Err: err}}
		m.logger.Err(rerr).Str("session_id", s.id).Msg("Failed to revoke token")
		return rerr
	}
	if status != http.StatusOK {
		RevocationsTotal.WithLabelValues(outcomeRejected).Inc()
		rerr := &RequestError{StatusCode: status, Body: string(body), Header: header}
		m.logger.Err(rerr).Str("session_id", s.id).Msg("Failed to revoke token")
		return rerr
	}

	RevocationsTotal.WithLabelValues(outcomeSuccess).Inc()
	if s.transition(Open, Closed) {
		OpenSessions.Dec()
	}
	m.mu.Lock()
	if m.current == s {
		m.current = nil
	}
	m.mu.Unlock()
	m.logger.Info().Str("session_id", s.id).Msg("Session closed")
	return nil
}

func (m *Manager) owns(s *Session) error {
	if s == nil {
		return ErrSessionNotOpen
	}
	if s.owner != m {
		return ErrForeignSession
	}
	return nil
}

// acquire posts req to the token endpoint and installs the returned token in s.
func (m *Manager) acquire(ctx context.Context, s *Session, req oauthmodel.TokenRequest) error {
	grant := string(req.GrantType)
	if err := req.Validate(); err != nil {
		TokenRequestsTotal.WithLabelValues(grant, outcomeInvalid).Inc()
		return &AuthError{Err: err}
	}

	status, body, _, err := m.postForm(ctx, m.endpoints.Token, req.Form(), s.creds)
	if err != nil {
		TokenRequestsTotal.WithLabelValues(grant, outcomeTransport).Inc()
		return &AuthError{Err: &TransportError{Op: "token", URL: m.endpoints.Token, Err: err}}
	}
	if status != http.StatusOK {
		TokenRequestsTotal.WithLabelValues(grant, outcomeRejected).Inc()
		return &AuthError{StatusCode: status, Body: string(body)}
	}

	tr, err := oauth2.ParseTokenResponse(body)
	if err != nil {
		TokenRequestsTotal.WithLabelValues(grant, outcomeMalformed).Inc()
		return &AuthError{StatusCode: status, Body: string(body), Err: fmt.Errorf("%w: %w", ErrMalformedToken, err)}
	}

	TokenRequestsTotal.WithLabelValues(grant, outcomeSuccess).Inc()
	now := m.nowTime()
	if !s.install(tr.Token(now), now) {
		return &AuthError{Err: ErrSessionNotOpen}
	}
	return nil
}

// postForm sends a form-encoded POST authenticated with the client credentials
// as HTTP Basic auth.
func (m *Manager) postForm(ctx context.Context, endpoint string, form url.Values, creds Credentials) (int, []byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, resp.Header, nil
}
