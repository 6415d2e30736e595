package clients_test

import (
	"testing"

	"github.com/jrsteele09/go-rdp-session/clients"
	fakeclientrepo "github.com/jrsteele09/go-rdp-session/clients/fakerepo"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	c := &clients.Client{ID: "app-key", Secret: "", Scopes: []string{"trapi", "trapi.data.esg"}}

	t.Run("authenticate", func(t *testing.T) {
		require.True(t, c.Authenticate(""))
		require.False(t, c.Authenticate("guess"))
	})

	t.Run("scopes", func(t *testing.T) {
		require.NoError(t, c.ValidateScopes(""))
		require.NoError(t, c.ValidateScopes("trapi  trapi.data.esg"))
		require.ErrorIs(t, c.ValidateScopes("trapi admin"), clients.ErrInvalidScope)
	})
}

func TestFakeClientRepo(t *testing.T) {
	repo := fakeclientrepo.NewFakeClientRepo()

	anon := &clients.Client{Scopes: []string{"trapi"}}
	require.NoError(t, repo.Upsert(anon))
	require.NotEmpty(t, anon.ID)

	got, err := repo.Get(anon.ID)
	require.NoError(t, err)
	got.Scopes[0] = "changed"
	again, err := repo.Get(anon.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"trapi"}, again.Scopes)

	require.NoError(t, repo.Delete(anon.ID))
	_, err = repo.Get(anon.ID)
	require.ErrorIs(t, err, clients.ErrClientNotFound)
}
