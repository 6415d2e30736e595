package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-rdp-session/clients"
	"github.com/jrsteele09/go-rdp-session/internal/utils"
	"github.com/jrsteele09/go-rdp-session/oauth2"
	"github.com/jrsteele09/go-rdp-session/oauthmodel"
	"github.com/jrsteele09/go-rdp-session/token/refresh"
)

const contentTypeJSON = "application/json; charset=utf-8"

// oauthError is an error response from the token or revoke endpoint.
type oauthError struct {
	code        string
	description string
	status      int
}

func (e *oauthError) Error() string {
	return e.code + ": " + e.description
}

var (
	errInvalidGrant = &oauthError{"invalid_grant", "Invalid username or password.", http.StatusBadRequest}
	errQuotaReached = &oauthError{"access_denied", "Session quota is reached.", http.StatusBadRequest}
	errBlocked      = &oauthError{"access_denied", "Account is blocked.", http.StatusBadRequest}
	errBadRefresh   = &oauthError{"invalid_grant", "Invalid refresh token.", http.StatusBadRequest}
)

// WellKnownOpenIDConfig serves the discovery document
func (s *Server) WellKnownOpenIDConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := issuer(r)
		resp := map[string]any{
			"issuer":                                baseURL,
			"token_endpoint":                        baseURL + RouteOAuth2Token,
			"revocation_endpoint":                   baseURL + RouteOAuth2Revoke,
			"grant_types_supported":                 []string{string(oauth2.PasswordGrant), string(oauth2.RefreshTokenGrant)},
			"scopes_supported":                      []string{oauth2.DefaultScope},
			"token_endpoint_auth_methods_supported": []string{"client_secret_basic"},
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Token handles the password and refresh_token grants
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := s.authenticateClient(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="platform"`)
			writeJSONError(w, "invalid_client", "Invalid client credentials", http.StatusUnauthorized)
			return
		}

		if err := r.ParseForm(); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse form data", http.StatusBadRequest)
			return
		}

		req := oauthmodel.TokenRequestFromForm(r.PostForm)
		if err := req.Validate(); err != nil {
			code := "invalid_request"
			if errors.Is(err, oauthmodel.ErrUnsupportedGrantType) {
				code = "unsupported_grant_type"
			}
			writeJSONError(w, code, err.Error(), http.StatusBadRequest)
			return
		}

		var (
			resp *oauth2.TokenResponse
			err  error
		)
		switch req.GrantType {
		case oauth2.PasswordGrant:
			resp, err = s.passwordGrant(r, client, req)
		case oauth2.RefreshTokenGrant:
			resp, err = s.refreshGrant(r, client, req)
		}
		if err != nil {
			var oerr *oauthError
			if errors.As(err, &oerr) {
				writeJSONError(w, oerr.code, oerr.description, oerr.status)
				return
			}
			s.logger.Err(err).Str("grant", string(req.GrantType)).Msg("Token request failed")
			writeJSONError(w, "server_error", "failed to issue tokens", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (s *Server) passwordGrant(r *http.Request, client *clients.Client, req oauthmodel.TokenRequest) (*oauth2.TokenResponse, error) {
	scope := strings.TrimSpace(req.Scope)
	if scope == "" {
		scope = oauth2.DefaultScope
	}
	if err := client.ValidateScopes(scope); err != nil {
		return nil, &oauthError{"invalid_scope", err.Error(), http.StatusBadRequest}
	}

	user, err := s.users.Get(req.Username)
	if err != nil || !user.CheckPassword(req.Password) {
		return nil, errInvalidGrant
	}
	if user.Blocked {
		return nil, errBlocked
	}

	// A second sign-on for the same user is refused unless it takes exclusive
	// control, which displaces the first and revokes its access tokens.
	if s.refresh.Active(user.Username) {
		if !req.TakeExclusiveSignOnControl {
			return nil, errQuotaReached
		}
		s.endSignOn(user.Username)
	}

	resp, err := s.issue(r, client.ID, user.Username, scope)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetLastLogin(user.Username); err != nil {
		s.logger.Warn().Err(err).Str("username", user.Username).Msg("Failed to record last login")
	}
	return resp, nil
}

func (s *Server) refreshGrant(r *http.Request, client *clients.Client, req oauthmodel.TokenRequest) (*oauth2.TokenResponse, error) {
	rt, err := s.refresh.Get(req.RefreshToken)
	if err != nil {
		return nil, errBadRefresh
	}
	if rt.Username != req.Username || rt.ClientID != client.ID || s.refresh.IsExpired(rt) {
		return nil, errBadRefresh
	}
	return s.issue(r, client.ID, rt.Username, rt.Scope)
}

// issue creates an access token and a rotated refresh token.
func (s *Server) issue(r *http.Request, clientID, username, scope string) (*oauth2.TokenResponse, error) {
	access, err := s.creator.CreateAccessToken(issuer(r), username, clientID, scope)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.refresh.Create(clientID, username, scope)
	if err != nil {
		return nil, err
	}
	s.signOns.issued(username, access)
	return &oauth2.TokenResponse{
		AccessToken:  &access.Raw,
		RefreshToken: refreshToken,
		ExpiresIn:    utils.Ptr(oauth2.ExpiresIn(s.creator.Expiry().Seconds())),
		TokenType:    "Bearer",
		Scope:        scope,
	}, nil
}

// Revoke revokes an access or refresh token. Unknown tokens are accepted
// silently. Revoking an access token also ends the user's sign-on.
func (s *Server) Revoke() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := s.authenticateClient(r)
		if !ok {
			writeJSONError(w, "invalid_client", "Invalid client credentials", http.StatusUnauthorized)
			return
		}

		if err := r.ParseForm(); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse form data", http.StatusBadRequest)
			return
		}

		req := oauthmodel.RevokeRequestFromForm(r.PostForm)
		if err := req.Validate(); err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}

		if req.TokenTypeHint != oauth2.RefreshTokenHint {
			if claims, err := s.creator.Verify(req.Token); err == nil {
				if claims["client_id"] != client.ID {
					writeJSONError(w, "unauthorized_client", "token was issued to another client", http.StatusBadRequest)
					return
				}
				jti, _ := claims["jti"].(string)
				if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
					s.revokeAccessToken(jti, exp.Time)
				}
				if sub, err := claims.GetSubject(); err == nil {
					s.endSignOn(sub)
				}
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		if err := s.refresh.Delete(req.Token); err != nil && !errors.Is(err, refresh.ErrNotFound) {
			s.logger.Err(err).Msg("Failed to revoke refresh token")
			writeJSONError(w, "server_error", "failed to revoke token", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// authenticateClient checks the Basic credentials against the registered app keys.
func (s *Server) authenticateClient(r *http.Request) (*clients.Client, bool) {
	clientID, secret, ok := r.BasicAuth()
	if !ok || clientID == "" {
		return nil, false
	}
	client, err := s.clients.Get(clientID)
	if err != nil || !client.Authenticate(secret) {
		return nil, false
	}
	return client, true
}

// writeJSONError writes an OAuth2 error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
