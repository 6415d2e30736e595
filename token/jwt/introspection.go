package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-rdp-session/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrNotJWT is returned for opaque access tokens that carry no readable claims.
var ErrNotJWT = errors.New("access token is not a JWT")

// TokenIntrospection is what a client can learn from its own access token.
// The signature is not verified: the platform is the only party that trusts
// these claims, the client only reads them to anticipate expiry.
type TokenIntrospection struct {
	Active bool       // False once exp has passed
	Exp    *time.Time // Expiration
	Iat    *time.Time // Issued at time
	Sub    *string    // Subject (platform user id)
	Iss    *string    // Issuer
	Scopes []string   // Granted scopes
}

// Inspect reads the claims of rawToken without verifying its signature.
func Inspect(rawToken string) (*TokenIntrospection, error) {
	rawToken = strings.TrimSpace(rawToken)
	if strings.Count(rawToken, ".") != 2 {
		return nil, ErrNotJWT
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims from token")
	}

	ti := &TokenIntrospection{Active: true}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ti.Exp = utils.Ptr(exp.Time)
		if NowTimeFunc().After(exp.Time) {
			ti.Active = false
		}
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		ti.Iat = utils.Ptr(iat.Time)
	}
	if sub, err := claims.GetSubject(); err == nil {
		ti.Sub = utils.NonBlank(sub)
	}
	if iss, err := claims.GetIssuer(); err == nil {
		ti.Iss = utils.NonBlank(iss)
	}
	if scope, ok := claims["scope"]; ok {
		ti.Scopes = utils.ScopeList(scope)
	}

	return ti, nil
}

// Expiry returns the exp claim of rawToken, or false when the token is opaque
// or carries no exp.
func Expiry(rawToken string) (time.Time, bool) {
	ti, err := Inspect(rawToken)
	if err != nil || ti.Exp == nil {
		return time.Time{}, false
	}
	return *ti.Exp, true
}
