package oauth2

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jrsteele09/go-rdp-session/internal/utils"
	xoauth2 "golang.org/x/oauth2"
)

// TokenResponse represents the body of a successful token endpoint response.
// Fields are pointers so that an absent field can be told apart from an empty one.
type TokenResponse struct {
	// AccessToken is sent as "Authorization: Bearer <access_token>" on data calls.
	AccessToken *string `json:"access_token,omitempty"`

	// RefreshToken can be exchanged for a new access token (grant_type=refresh_token).
	RefreshToken *string `json:"refresh_token,omitempty"`

	// ExpiresIn is the access token lifetime in seconds. The platform sends it as
	// a quoted string ("300"); plain numbers are accepted too.
	ExpiresIn *ExpiresIn `json:"expires_in,omitempty"`

	TokenType string `json:"token_type,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

// ExpiresIn is a lifetime in seconds that decodes from a JSON number or a numeric string.
type ExpiresIn int64

func (e *ExpiresIn) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("expires_in: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("expires_in: negative lifetime %d", n)
	}
	*e = ExpiresIn(n)
	return nil
}

// MarshalJSON writes the lifetime as a quoted string, the way the platform does.
func (e ExpiresIn) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(e), 10))
}

func (e ExpiresIn) Duration() time.Duration {
	return time.Duration(e) * time.Second
}

// ParseTokenResponse decodes body and checks that an access token is present.
func ParseTokenResponse(body []byte) (*TokenResponse, error) {
	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if utils.Value(tr.AccessToken) == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}
	return &tr, nil
}

// Token converts the response into an x/oauth2 token issued at obtainedAt.
// A missing expires_in leaves Expiry zero (no known expiry).
func (tr *TokenResponse) Token(obtainedAt time.Time) *xoauth2.Token {
	t := &xoauth2.Token{
		AccessToken:  utils.Value(tr.AccessToken),
		RefreshToken: utils.Value(tr.RefreshToken),
		TokenType:    tr.TokenType,
	}
	if t.TokenType == "" {
		t.TokenType = "Bearer"
	}
	if tr.ExpiresIn != nil {
		t.ExpiresIn = int64(*tr.ExpiresIn)
		t.Expiry = obtainedAt.Add(tr.ExpiresIn.Duration())
	}
	return t
}
