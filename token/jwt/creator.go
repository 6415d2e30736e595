package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrEmptySigningKey = errors.New("signing key is empty")

// Creator signs and verifies the HS256 access tokens issued by the mock platform.
type Creator struct {
	key    []byte
	expiry time.Duration
}

// NewCreator creates a creator whose tokens live for expiry.
func NewCreator(key []byte, expiry time.Duration) (*Creator, error) {
	if len(key) == 0 {
		return nil, ErrEmptySigningKey
	}
	return &Creator{key: key, expiry: expiry}, nil
}

// Expiry is the lifetime given to new access tokens.
func (c *Creator) Expiry() time.Duration {
	return c.expiry
}

// AccessToken is a signed token with the claims needed to revoke it.
type AccessToken struct {
	Raw       string
	ID        string
	ExpiresAt time.Time
}

// CreateAccessToken creates an access token for username acting through clientID.
func (c *Creator) CreateAccessToken(issuer, username, clientID, scope string) (*AccessToken, error) {
	now := NowTimeFunc()
	id := uuid.New().String()
	exp := now.Add(c.expiry)
	claims := jwtlib.MapClaims{
		"iss":       issuer,     // The issuing platform
		"sub":       username,   // The platform login
		"client_id": clientID,   // App key the token was issued to
		"scope":     scope,      // Granted scopes, space separated
		"iat":       now.Unix(), // Issued At
		"exp":       exp.Unix(), // Expiry
		"jti":       id,         // Unique token ID for revocation
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return &AccessToken{Raw: signed, ID: id, ExpiresAt: time.Unix(exp.Unix(), 0)}, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
func (c *Creator) Verify(raw string) (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.key, nil
	},
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	return claims, nil
}
