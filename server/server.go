// Package server is an in-memory stand-in for the platform: it issues and
// revokes password-grant tokens and serves bearer-protected data routes that
// echo what they receive. It backs the demo's --mock mode and end-to-end tests.
package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-rdp-session/clients"
	fakeclientrepo "github.com/jrsteele09/go-rdp-session/clients/fakerepo"
	"github.com/jrsteele09/go-rdp-session/oauth2"
	"github.com/jrsteele09/go-rdp-session/token"
	"github.com/jrsteele09/go-rdp-session/token/jwt"
	"github.com/jrsteele09/go-rdp-session/token/refresh"
	fakerefreshrepo "github.com/jrsteele09/go-rdp-session/token/refresh/repofake"
	"github.com/jrsteele09/go-rdp-session/users"
	fakeuserrepo "github.com/jrsteele09/go-rdp-session/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAccessTokenExpiry  = 5 * time.Minute
	DefaultRefreshTokenExpiry = 8 * time.Hour
	DefaultPurgeInterval      = time.Minute
)

// Repos are the stores behind the mock platform. Nil entries get in-memory fakes.
type Repos struct {
	Users         users.UserRepo
	Clients       clients.Repo
	RefreshTokens refresh.Repo
	Revoked       token.RevocationList
}

type Server struct {
	env     string // "DEV" logs every route
	mux     *http.ServeMux
	routes  []string
	logger  zerolog.Logger
	users   users.UserRepo
	clients clients.Repo
	refresh *refresh.Manager
	revoked token.RevocationList
	signOns *signOns
	creator *jwt.Creator

	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	signingKey         []byte
	purgeInterval      time.Duration

	httpMu     sync.Mutex
	httpServer *http.Server
	stopPurge  chan struct{}
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithEnv(env string) Option {
	return func(s *Server) { s.env = env }
}

func WithAccessTokenExpiry(d time.Duration) Option {
	return func(s *Server) { s.accessTokenExpiry = d }
}

func WithRefreshTokenExpiry(d time.Duration) Option {
	return func(s *Server) { s.refreshTokenExpiry = d }
}

// WithPurgeInterval sets how often a started server drops expired entries
// from its revocation list.
func WithPurgeInterval(d time.Duration) Option {
	return func(s *Server) { s.purgeInterval = d }
}

// WithSigningKey fixes the HS256 key. By default a random key is generated.
func WithSigningKey(key []byte) Option {
	return func(s *Server) { s.signingKey = key }
}

func New(repos Repos, opts ...Option) (*Server, error) {
	s := &Server{
		mux:                http.NewServeMux(),
		logger:             log.Logger,
		users:              repos.Users,
		clients:            repos.Clients,
		revoked:            repos.Revoked,
		signOns:            newSignOns(),
		accessTokenExpiry:  DefaultAccessTokenExpiry,
		refreshTokenExpiry: DefaultRefreshTokenExpiry,
		purgeInterval:      DefaultPurgeInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.users == nil {
		s.users = fakeuserrepo.NewFakeUserRepo()
	}
	if s.clients == nil {
		s.clients = fakeclientrepo.NewFakeClientRepo()
	}
	if s.revoked == nil {
		s.revoked = token.NewMemoryRevocationList()
	}
	if s.purgeInterval <= 0 {
		s.purgeInterval = DefaultPurgeInterval
	}
	refreshRepo := repos.RefreshTokens
	if refreshRepo == nil {
		refreshRepo = fakerefreshrepo.NewFakeRefreshTokenRepo()
	}
	s.refresh = refresh.NewManager(refreshRepo, s.refreshTokenExpiry)

	if len(s.signingKey) == 0 {
		s.signingKey = make([]byte, 32)
		if _, err := rand.Read(s.signingKey); err != nil {
			return nil, fmt.Errorf("[Server New] failed to generate signing key: %w", err)
		}
	}
	creator, err := jwt.NewCreator(s.signingKey, s.accessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}
	s.creator = creator

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

// AddUser registers a platform login.
func (s *Server) AddUser(username, password string) error {
	u, err := users.New(username, password)
	if err != nil {
		return err
	}
	return s.users.Upsert(u)
}

// AddClient registers an app key. Without scopes the client may request the default scope only.
func (s *Server) AddClient(id, secret string, scopes ...string) error {
	if len(scopes) == 0 {
		scopes = []string{oauth2.DefaultScope}
	}
	return s.clients.Upsert(&clients.Client{ID: id, Secret: secret, Scopes: scopes})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Start listens on addr ("127.0.0.1:0" picks a free port) and serves in the
// background. It returns the base URL of the running platform. While running,
// expired entries are purged from the revocation list.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	done := make(chan struct{})
	s.httpMu.Lock()
	s.httpServer = srv
	s.stopPurge = done
	s.httpMu.Unlock()

	go s.purgeRevoked(done)

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Err(err).Msg("Mock platform stopped")
		}
	}()

	baseURL := "http://" + ln.Addr().String()
	s.logger.Info().Str("url", baseURL).Msg("Mock platform listening")
	return baseURL, nil
}

// Shutdown stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.httpMu.Lock()
	srv, done := s.httpServer, s.stopPurge
	s.httpServer, s.stopPurge = nil, nil
	s.httpMu.Unlock()
	if srv == nil {
		return nil
	}
	close(done)
	return srv.Shutdown(ctx)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logger.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("Route")
		} else {
			s.logger.Debug().Str("path", parts[0]).Msg("Route")
		}
	}
}

// issuer is the platform origin as seen by the caller.
func issuer(r *http.Request) string {
	return getScheme(r) + "://" + r.Host
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
