package oauthmodel

import "errors"

var (
	ErrUnsupportedGrantType = errors.New("unsupported grant type")
	ErrMissingUsername      = errors.New("username is required")
	ErrMissingPassword      = errors.New("password is required")
	ErrMissingRefreshToken  = errors.New("refresh token is required")
	ErrMissingRevokeToken   = errors.New("token to revoke is required")
)
