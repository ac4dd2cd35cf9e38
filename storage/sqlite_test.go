package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgrio/ledgrio-go/storage"
)

func newSQLiteRepo(t *testing.T) *storage.SQLiteRepo {
	t.Helper()

	repo, err := storage.NewSQLiteRepo(filepath.Join(t.TempDir(), "ledgrio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepoRoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)

	require.NoError(t, repo.Save(testSession()))

	loaded, err = repo.Load()
	require.NoError(t, err)
	require.Equal(t, "access-token-1", loaded.AccessToken)
	require.Equal(t, "refresh-token-1", loaded.RefreshToken)

	require.NoError(t, repo.Clear())
	loaded, err = repo.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestSQLiteRepoSaveReplacesPrevious(t *testing.T) {
	repo := newSQLiteRepo(t)

	require.NoError(t, repo.Save(testSession()))

	next := testSession()
	next.AccessToken = "access-token-2"
	require.NoError(t, repo.Save(next))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, "access-token-2", loaded.AccessToken)
}

func TestSQLiteRepoClearIsIdempotent(t *testing.T) {
	repo := newSQLiteRepo(t)

	require.NoError(t, repo.Clear())
	require.NoError(t, repo.Clear())
}
