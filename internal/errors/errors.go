package errors

import (
	"errors"
	"fmt"
)

// Common error values for the RDP session client
var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingUsername    = errors.New("username is required")
	ErrMissingPassword    = errors.New("password is required")
	ErrMissingClientID    = errors.New("client id (app key) is required")

	// Session errors
	ErrSessionNotOpen  = errors.New("session is not open")
	ErrNoRefreshToken  = errors.New("session has no refresh token")
	ErrMalformedToken  = errors.New("malformed token response")
	ErrForeignSession  = errors.New("session is not owned by this manager")
	ErrEndpointMissing = errors.New("endpoint is not configured")

	// Request errors
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnsupportedMethod = errors.New("unsupported http method")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
