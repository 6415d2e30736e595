package oauth2

// GrantType represents the OAuth 2.0 grant type sent to the token endpoint.
type GrantType string

const (
	// PasswordGrant exchanges a username and password, together with the
	// client credentials, directly for tokens.
	// Token request includes: username, password, scope, takeExclusiveSignOnControl
	// Returns: access_token, refresh_token, expires_in
	PasswordGrant GrantType = "password"

	// RefreshTokenGrant exchanges a refresh token for a new access token.
	// Token request includes: refresh_token, username
	// Returns: new access_token and a (possibly rotated) refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// TokenTypeHint tells the revocation endpoint which kind of token is presented.
type TokenTypeHint string

const (
	AccessTokenHint  TokenTypeHint = "access_token"
	RefreshTokenHint TokenTypeHint = "refresh_token"
)

// DefaultScope is the platform scope requested when credentials carry none.
const DefaultScope = "trapi"
