package session

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	rdperrors "github.com/jrsteele09/go-rdp-session/internal/errors"
)

// Sentinels re-exported for callers matching with errors.Is.
var (
	ErrInvalidCredentials = rdperrors.ErrInvalidCredentials
	ErrSessionNotOpen     = rdperrors.ErrSessionNotOpen
	ErrNoRefreshToken     = rdperrors.ErrNoRefreshToken
	ErrUnsupportedMethod  = rdperrors.ErrUnsupportedMethod
	ErrInvalidRequest     = rdperrors.ErrInvalidRequest
	ErrMalformedToken     = rdperrors.ErrMalformedToken
	ErrForeignSession     = rdperrors.ErrForeignSession
)

// AuthError reports a failed token acquisition (open or refresh).
// StatusCode and Body are set when the token endpoint answered; Err is set for
// input, transport or decode failures.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	return describe("authentication failed", e.StatusCode, e.Body, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// RequestError reports a failed authenticated call (dispatch or revoke).
type RequestError struct {
	StatusCode int
	Body       string
	Header     http.Header
	Err        error
}

func (e *RequestError) Error() string {
	return describe("request failed", e.StatusCode, e.Body, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// TransportError is a connection level failure (DNS, timeout, refused) that
// produced no HTTP response. It underlies AuthError or RequestError.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	cause := e.Err
	var ue *url.Error
	if errors.As(cause, &ue) {
		cause = ue.Err
	}
	return fmt.Sprintf("transport error: %s %s: %v", e.Op, e.URL, cause)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

func describe(prefix string, status int, body string, err error) string {
	switch {
	case status != 0 && err != nil:
		return fmt.Sprintf("%s: status %d: %v", prefix, status, err)
	case status != 0:
		if body == "" {
			return fmt.Sprintf("%s: status %d %s", prefix, status, http.StatusText(status))
		}
		return fmt.Sprintf("%s: status %d: %s", prefix, status, body)
	case err != nil:
		return fmt.Sprintf("%s: %v", prefix, err)
	}
	return prefix
}
