package oauthmodel_test

import (
	"testing"

	"github.com/jrsteele09/go-rdp-session/oauth2"
	"github.com/jrsteele09/go-rdp-session/oauthmodel"
	"github.com/stretchr/testify/require"
)

func TestTokenRequest_Validate(t *testing.T) {
	t.Run("valid password grant", func(t *testing.T) {
		r := oauthmodel.TokenRequest{GrantType: oauth2.PasswordGrant, Username: "u", Password: "p"}
		require.NoError(t, r.Validate())
	})

	t.Run("missing username", func(t *testing.T) {
		r := oauthmodel.TokenRequest{GrantType: oauth2.PasswordGrant, Password: "p"}
		require.ErrorIs(t, r.Validate(), oauthmodel.ErrMissingUsername)
	})

	t.Run("missing password", func(t *testing.T) {
		r := oauthmodel.TokenRequest{GrantType: oauth2.PasswordGrant, Username: "u"}
		require.ErrorIs(t, r.Validate(), oauthmodel.ErrMissingPassword)
	})

	t.Run("refresh grant without token", func(t *testing.T) {
		r := oauthmodel.TokenRequest{GrantType: oauth2.RefreshTokenGrant, Username: "u"}
		require.ErrorIs(t, r.Validate(), oauthmodel.ErrMissingRefreshToken)
	})

	t.Run("unsupported grant", func(t *testing.T) {
		r := oauthmodel.TokenRequest{GrantType: "client_credentials", Username: "u"}
		require.ErrorIs(t, r.Validate(), oauthmodel.ErrUnsupportedGrantType)
	})
}

func TestTokenRequest_Form(t *testing.T) {
	t.Run("password grant", func(t *testing.T) {
		form := oauthmodel.TokenRequest{
			GrantType:                  oauth2.PasswordGrant,
			Username:                   "u",
			Password:                   "p",
			TakeExclusiveSignOnControl: true,
		}.Form()

		require.Equal(t, "password", form.Get("grant_type"))
		require.Equal(t, "u", form.Get("username"))
		require.Equal(t, "p", form.Get("password"))
		require.Equal(t, "trapi", form.Get("scope"))
		require.Equal(t, "true", form.Get("takeExclusiveSignOnControl"))
		require.False(t, form.Has("refresh_token"))
	})

	t.Run("refresh grant", func(t *testing.T) {
		form := oauthmodel.TokenRequest{
			GrantType:    oauth2.RefreshTokenGrant,
			Username:     "u",
			RefreshToken: "R1",
		}.Form()

		require.Equal(t, "refresh_token", form.Get("grant_type"))
		require.Equal(t, "R1", form.Get("refresh_token"))
		require.Equal(t, "false", form.Get("takeExclusiveSignOnControl"))
		require.False(t, form.Has("password"))
		require.False(t, form.Has("scope"))
	})
}

func TestRevokeRequest(t *testing.T) {
	require.ErrorIs(t, oauthmodel.RevokeRequest{}.Validate(), oauthmodel.ErrMissingRevokeToken)

	form := oauthmodel.RevokeRequest{Token: "T1"}.Form()
	require.Equal(t, "T1", form.Get("token"))
	require.False(t, form.Has("token_type_hint"))

	form = oauthmodel.RevokeRequest{Token: "R1", TokenTypeHint: oauth2.RefreshTokenHint}.Form()
	require.Equal(t, "refresh_token", form.Get("token_type_hint"))
}

func TestFromForm(t *testing.T) {
	req := oauthmodel.TokenRequestFromForm(oauthmodel.TokenRequest{
		GrantType:                  oauth2.PasswordGrant,
		Username:                   "u",
		Password:                   "p",
		Scope:                      "trapi.data",
		TakeExclusiveSignOnControl: true,
	}.Form())
	require.Equal(t, oauth2.PasswordGrant, req.GrantType)
	require.Equal(t, "p", req.Password)
	require.Equal(t, "trapi.data", req.Scope)
	require.True(t, req.TakeExclusiveSignOnControl)
	require.NoError(t, req.Validate())

	rev := oauthmodel.RevokeRequestFromForm(oauthmodel.RevokeRequest{Token: "T1", TokenTypeHint: oauth2.AccessTokenHint}.Form())
	require.Equal(t, "T1", rev.Token)
	require.Equal(t, oauth2.AccessTokenHint, rev.TokenTypeHint)
}
