package refresh

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("refresh token not found")

// StoredRefreshToken is the server-side record behind an opaque refresh token.
// The client only ever sees Token.
type StoredRefreshToken struct {
	Token    string
	Username string
	ClientID string
	Scope    string
	Iat      time.Time
}

// Repo stores refresh token metadata keyed by the token string.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetByUsername(username string) (*StoredRefreshToken, error)
}
