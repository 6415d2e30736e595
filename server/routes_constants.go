package server

import "github.com/jrsteele09/go-rdp-session/endpoints"

const (
	RouteWellKnownOpenIDConfig = "/.well-known/openid-configuration"
	RouteOAuth2Token           = endpoints.TokenPath
	RouteOAuth2Revoke          = endpoints.RevokePath

	// Data routes echo authenticated requests.
	RouteData          = "/data/"
	RouteUserFramework = "/user-framework/"
)
