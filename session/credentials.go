package session

import (
	"fmt"
	"strings"

	rdperrors "github.com/jrsteele09/go-rdp-session/internal/errors"
)

// Credentials identify the user and the calling application.
type Credentials struct {
	Username string
	Password string
	// ClientID is the vendor issued app key.
	ClientID string
	// ClientSecret is usually empty for app keys.
	ClientSecret string
	// Scope defaults to the manager's scope when empty.
	Scope string
}

// Validate reports the first missing required field. The returned error
// matches ErrInvalidCredentials.
func (c Credentials) Validate() error {
	switch {
	case strings.TrimSpace(c.Username) == "":
		return fmt.Errorf("%w: %w", rdperrors.ErrInvalidCredentials, rdperrors.ErrMissingUsername)
	case c.Password == "":
		return fmt.Errorf("%w: %w", rdperrors.ErrInvalidCredentials, rdperrors.ErrMissingPassword)
	case strings.TrimSpace(c.ClientID) == "":
		return fmt.Errorf("%w: %w", rdperrors.ErrInvalidCredentials, rdperrors.ErrMissingClientID)
	}
	return nil
}

// String never includes the password or client secret.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q, ClientID: %q, Scope: %q}", c.Username, c.ClientID, c.Scope)
}
