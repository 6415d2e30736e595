package refresh_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-rdp-session/token/refresh"
	fakerefreshrepo "github.com/jrsteele09/go-rdp-session/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	refresh.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

	m := refresh.NewManager(fakerefreshrepo.NewFakeRefreshTokenRepo(), time.Hour)

	t.Run("create and get", func(t *testing.T) {
		tok, err := m.Create("app", "alice", "trapi")
		require.NoError(t, err)
		require.Len(t, *tok, 64)

		rt, err := m.Get(*tok)
		require.NoError(t, err)
		require.Equal(t, "alice", rt.Username)
		require.Equal(t, "app", rt.ClientID)
		require.True(t, m.Active("alice"))
	})

	t.Run("one token per user", func(t *testing.T) {
		first, err := m.Create("app", "bob", "trapi")
		require.NoError(t, err)
		second, err := m.Create("app", "bob", "trapi")
		require.NoError(t, err)
		require.NotEqual(t, *first, *second)

		_, err = m.Get(*first)
		require.ErrorIs(t, err, refresh.ErrNotFound)
	})

	t.Run("expiry", func(t *testing.T) {
		_, err := m.Create("app", "carol", "trapi")
		require.NoError(t, err)
		now = now.Add(2 * time.Hour)
		require.False(t, m.Active("carol"))
	})

	t.Run("delete for user", func(t *testing.T) {
		tok, err := m.Create("app", "dave", "trapi")
		require.NoError(t, err)
		require.NoError(t, m.DeleteForUser("dave"))
		require.NoError(t, m.DeleteForUser("dave"))
		_, err = m.Get(*tok)
		require.ErrorIs(t, err, refresh.ErrNotFound)
	})
}
