package config

import "time"

const (
	scopeVar         = "RDP_SCOPE"
	refreshMarginVar = "RDP_REFRESH_MARGIN"
)

type OAuthConfig interface {
	GetScope() string
	GetTokenPath() string
	GetRevokePath() string
	GetTakeExclusiveSignOnControl() bool
	GetRefreshMargin() time.Duration
}

type OAuth struct {
	file FileValues
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetScope() string {
	return o.file.lookup(scopeVar, "trapi")
}

func (OAuth) GetTokenPath() string {
	return "/auth/oauth2/v1/token"
}

func (OAuth) GetRevokePath() string {
	return "/auth/oauth2/v1/revoke"
}

// GetTakeExclusiveSignOnControl makes a new sign-on displace any other session
// held for the same user.
func (OAuth) GetTakeExclusiveSignOnControl() bool {
	return true
}

// GetRefreshMargin returns how long before expiry a dispatch refreshes the
// token first. Zero turns automatic refresh off.
func (o OAuth) GetRefreshMargin() time.Duration {
	return o.file.duration(refreshMarginVar, 0)
}
