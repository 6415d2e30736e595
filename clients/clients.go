package clients

import (
	"crypto/subtle"
	"errors"
	"slices"
	"strings"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidScope   = errors.New("invalid scope")
)

// Client is a registered application, identified on the platform by its app key.
type Client struct {
	ID          string   `json:"id"` // app key
	Description string   `json:"description"`
	Secret      string   `json:"secret"` // usually empty for app keys
	Scopes      []string `json:"scopes"` // Allowed scopes for this client
}

// Authenticate compares secret with the registered one in constant time.
func (c *Client) Authenticate(secret string) bool {
	return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) == 1
}

// HasScope checks if the client has permission for a specific scope
func (c *Client) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ValidateScopes checks that every space separated scope in requestedScopes is allowed.
func (c *Client) ValidateScopes(requestedScopes string) error {
	for _, scope := range strings.Fields(requestedScopes) {
		if !c.HasScope(scope) {
			return ErrInvalidScope
		}
	}
	return nil
}
