package users_test

import (
	"testing"

	"github.com/jrsteele09/go-rdp-session/users"
	fakeuserrepo "github.com/jrsteele09/go-rdp-session/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	u, err := users.New(" alice@example.com ", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Username)
	require.NotEqual(t, "s3cret", u.PasswordHash)
	require.True(t, u.CheckPassword("s3cret"))
	require.False(t, u.CheckPassword("wrong"))

	_, err = users.New("  ", "x")
	require.ErrorIs(t, err, users.ErrEmptyUsername)
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	u, err := users.New("bob", "pw")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(u))

	got, err := repo.Get("bob")
	require.NoError(t, err)
	require.True(t, got.CheckPassword("pw"))
	require.True(t, got.LastLogin.IsZero())

	require.NoError(t, repo.SetLastLogin("bob"))
	got, err = repo.Get("bob")
	require.NoError(t, err)
	require.False(t, got.LastLogin.IsZero())

	require.NoError(t, repo.Delete("bob"))
	_, err = repo.Get("bob")
	require.ErrorIs(t, err, users.ErrUserNotFound)
	require.ErrorIs(t, repo.Delete("bob"), users.ErrUserNotFound)
	require.ErrorIs(t, repo.SetLastLogin("bob"), users.ErrUserNotFound)
}
