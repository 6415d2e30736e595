// Package endpoints resolves the platform URLs a session talks to.
package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	rdperrors "github.com/jrsteele09/go-rdp-session/internal/errors"
)

const (
	TokenPath  = "/auth/oauth2/v1/token"
	RevokePath = "/auth/oauth2/v1/revoke"
)

// Endpoints holds the absolute URLs of the token and revocation endpoints and
// the base against which relative data endpoint paths are resolved.
type Endpoints struct {
	Base   string
	Token  string
	Revoke string
}

// FromBaseURL derives the standard endpoint layout from a platform root such as
// "https://api.refinitiv.com".
func FromBaseURL(base string) Endpoints {
	return WithPaths(base, TokenPath, RevokePath)
}

// WithPaths derives endpoints from a platform root and explicit auth paths.
func WithPaths(base, tokenPath, revokePath string) Endpoints {
	base = strings.TrimRight(base, "/")
	return Endpoints{
		Base:   base,
		Token:  base + tokenPath,
		Revoke: base + revokePath,
	}
}

// Validate checks that every endpoint is an absolute http(s) URL.
func (e Endpoints) Validate() error {
	for name, raw := range map[string]string{"base": e.Base, "token": e.Token, "revoke": e.Revoke} {
		if raw == "" {
			return fmt.Errorf("%s: %w", name, rdperrors.ErrEndpointMissing)
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s endpoint %q: %w", name, raw, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s endpoint %q is not an absolute http(s) url", name, raw)
		}
	}
	return nil
}

// Resolve turns a data endpoint reference into an absolute URL. Absolute
// references are returned unchanged; relative ones ("data/esg/v1/...") are
// joined to Base.
func (e Endpoints) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty endpoint: %w", rdperrors.ErrInvalidRequest)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("endpoint %q: %w", ref, rdperrors.ErrInvalidRequest)
	}
	if u.IsAbs() {
		return ref, nil
	}
	if e.Base == "" {
		return "", fmt.Errorf("relative endpoint %q: %w", ref, rdperrors.ErrEndpointMissing)
	}
	return e.Base + "/" + strings.TrimLeft(ref, "/"), nil
}

// Discover reads the OpenID discovery document published by issuer and returns
// its token and revocation endpoints. Base is set to the issuer origin.
// A nil client uses http.DefaultClient.
func Discover(ctx context.Context, client *http.Client, issuer string) (Endpoints, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	var extra struct {
		RevocationEndpoint string `json:"revocation_endpoint"`
	}
	if err := provider.Claims(&extra); err != nil {
		return Endpoints{}, fmt.Errorf("failed to read discovery claims: %w", err)
	}

	u, err := url.Parse(issuer)
	if err != nil {
		return Endpoints{}, fmt.Errorf("issuer %q: %w", issuer, err)
	}

	e := Endpoints{
		Base:   u.Scheme + "://" + u.Host,
		Token:  provider.Endpoint().TokenURL,
		Revoke: extra.RevocationEndpoint,
	}
	if e.Revoke == "" {
		e.Revoke = e.Base + RevokePath
	}
	return e, e.Validate()
}
