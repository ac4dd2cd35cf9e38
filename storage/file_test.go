package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgrio/ledgrio-go/session"
	"github.com/ledgrio/ledgrio-go/storage"
)

func testSession() *session.Session {
	return &session.Session{
		AccessToken:  "access-token-1",
		RefreshToken: "refresh-token-1",
		User:         session.UserSummary{ID: "user-1", Email: "john.doe@example.com"},
	}
}

func TestFileRepoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	repo, err := storage.NewFileRepo(path, "")
	require.NoError(t, err)

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)

	require.NoError(t, repo.Save(testSession()))

	loaded, err = repo.Load()
	require.NoError(t, err)
	require.Equal(t, "access-token-1", loaded.AccessToken)
	require.Equal(t, "user-1", loaded.User.ID)

	require.NoError(t, repo.Clear())
	loaded, err = repo.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestFileRepoClearIsIdempotent(t *testing.T) {
	repo, err := storage.NewFileRepo(filepath.Join(t.TempDir(), "session.json"), "")
	require.NoError(t, err)

	require.NoError(t, repo.Clear())
	require.NoError(t, repo.Clear())
}

func TestFileRepoSealedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	repo, err := storage.NewFileRepo(path, "seal-key")
	require.NoError(t, err)

	require.NoError(t, repo.Save(testSession()))

	// The sealed file must not leak the refresh token in the clear.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "refresh-token-1")

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-token-1", loaded.RefreshToken)
}

func TestFileRepoSealedRejectsWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	repo, err := storage.NewFileRepo(path, "seal-key")
	require.NoError(t, err)
	require.NoError(t, repo.Save(testSession()))

	other, err := storage.NewFileRepo(path, "different-key")
	require.NoError(t, err)
	_, err = other.Load()
	require.Error(t, err)
}

func TestFileRepoLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repo, err := storage.NewFileRepo(path, "")
	require.NoError(t, err)
	_, err = repo.Load()
	require.Error(t, err)
}

func TestFileRepoRequiresPath(t *testing.T) {
	_, err := storage.NewFileRepo("", "")
	require.Error(t, err)
}
