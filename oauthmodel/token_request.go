package oauthmodel

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-rdp-session/oauth2"
)

// TokenRequest holds the form parameters for the token endpoint.
// Client credentials are not part of the form; they travel in the Basic
// Authorization header.
type TokenRequest struct {
	// GrantType selects the flow.
	// Supported: "password", "refresh_token"
	GrantType oauth2.GrantType

	// Username is the platform login (usually an email address).
	// Required: Yes, for both grants
	Username string

	// Password is the platform password.
	// Required: Yes (password grant only)
	// Security: Never log or expose this value
	Password string

	// Scope is the space separated scope list.
	// Required: No (password grant only, defaults to "trapi")
	Scope string

	// RefreshToken is exchanged for a new access token.
	// Required: Yes (refresh_token grant only)
	RefreshToken string

	// TakeExclusiveSignOnControl makes this sign-on displace any other
	// concurrent session held for the same user.
	TakeExclusiveSignOnControl bool
}

// Validate checks the parameters required by the grant type.
func (r TokenRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrMissingUsername
	}
	switch r.GrantType {
	case oauth2.PasswordGrant:
		if r.Password == "" {
			return ErrMissingPassword
		}
	case oauth2.RefreshTokenGrant:
		if strings.TrimSpace(r.RefreshToken) == "" {
			return ErrMissingRefreshToken
		}
	default:
		return ErrUnsupportedGrantType
	}
	return nil
}

// Form encodes the request as an application/x-www-form-urlencoded body.
func (r TokenRequest) Form() url.Values {
	form := url.Values{}
	form.Set("grant_type", string(r.GrantType))
	form.Set("username", r.Username)
	switch r.GrantType {
	case oauth2.PasswordGrant:
		scope := r.Scope
		if strings.TrimSpace(scope) == "" {
			scope = oauth2.DefaultScope
		}
		form.Set("password", r.Password)
		form.Set("scope", scope)
	case oauth2.RefreshTokenGrant:
		form.Set("refresh_token", r.RefreshToken)
	}
	form.Set("takeExclusiveSignOnControl", strconv.FormatBool(r.TakeExclusiveSignOnControl))
	return form
}

// TokenRequestFromForm reads a token request posted to the token endpoint.
func TokenRequestFromForm(form url.Values) TokenRequest {
	exclusive, _ := strconv.ParseBool(form.Get("takeExclusiveSignOnControl"))
	return TokenRequest{
		GrantType:                  oauth2.GrantType(form.Get("grant_type")),
		Username:                   form.Get("username"),
		Password:                   form.Get("password"),
		Scope:                      form.Get("scope"),
		RefreshToken:               form.Get("refresh_token"),
		TakeExclusiveSignOnControl: exclusive,
	}
}

// RevokeRequest holds the form parameters for the revocation endpoint.
type RevokeRequest struct {
	Token         string
	TokenTypeHint oauth2.TokenTypeHint
}

func (r RevokeRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return ErrMissingRevokeToken
	}
	return nil
}

func (r RevokeRequest) Form() url.Values {
	form := url.Values{}
	form.Set("token", r.Token)
	if r.TokenTypeHint != "" {
		form.Set("token_type_hint", string(r.TokenTypeHint))
	}
	return form
}

// RevokeRequestFromForm reads a revocation request posted to the revoke endpoint.
func RevokeRequestFromForm(form url.Values) RevokeRequest {
	return RevokeRequest{
		Token:         form.Get("token"),
		TokenTypeHint: oauth2.TokenTypeHint(form.Get("token_type_hint")),
	}
}
