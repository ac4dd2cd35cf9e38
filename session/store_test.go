package session_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/ledgrio/ledgrio-go/internal/errors"
	"github.com/ledgrio/ledgrio-go/session"
	fakesessionrepo "github.com/ledgrio/ledgrio-go/session/repofake"
)

const (
	testAccessToken  = "access-token-1"
	testRefreshToken = "refresh-token-1"
)

func testSession() session.Session {
	return session.Session{
		AccessToken:  testAccessToken,
		RefreshToken: testRefreshToken,
		User:         session.UserSummary{ID: "user-1", Email: "john.doe@example.com"},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := session.NewStore(nil)

	require.NoError(t, store.Set(testSession()))
	require.Equal(t, testAccessToken, store.Token())
	require.Equal(t, testRefreshToken, store.RefreshToken())

	store.Clear()
	require.Empty(t, store.Token())
	require.Nil(t, store.Current())
}

func TestStoreRejectsPartialSession(t *testing.T) {
	store := session.NewStore(nil)

	err := store.Set(session.Session{AccessToken: testAccessToken})
	require.ErrorIs(t, err, apperrors.ErrPartialSession)

	err = store.Set(session.Session{RefreshToken: testRefreshToken})
	require.ErrorIs(t, err, apperrors.ErrPartialSession)

	require.Nil(t, store.Current())
}

func TestStoreClearIsIdempotent(t *testing.T) {
	store := session.NewStore(fakesessionrepo.NewFakeSessionRepo())

	store.Clear()
	store.Clear()
	require.Nil(t, store.Current())
}

func TestStorePersistsThroughRepo(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	store := session.NewStore(repo)

	require.NoError(t, store.Set(testSession()))
	require.Equal(t, 1, repo.SaveCalls)

	persisted, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, testAccessToken, persisted.AccessToken)

	store.Clear()
	require.Equal(t, 1, repo.ClearCalls)
	persisted, err = repo.Load()
	require.NoError(t, err)
	require.Nil(t, persisted)
}

func TestStoreHydratesFromRepo(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	sess := testSession()
	repo.Seed(&sess)

	store := session.NewStore(repo)
	store.Hydrate()
	require.Equal(t, testAccessToken, store.Token())
	require.Equal(t, "user-1", store.User().ID)
}

func TestStoreFallsBackToRepoWithoutHydrate(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	sess := testSession()
	repo.Seed(&sess)

	store := session.NewStore(repo)
	require.Equal(t, testAccessToken, store.Token())
}

func TestStoreHydrateTreatsMalformedDataAsNoSession(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	repo.LoadErr = errors.New("corrupt payload")

	store := session.NewStore(repo)
	store.Hydrate()
	require.Empty(t, store.Token())
	require.Nil(t, store.Current())
}

func TestStoreIgnoresPersistedPartialSession(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	repo.Seed(&session.Session{AccessToken: testAccessToken})

	store := session.NewStore(repo)
	store.Hydrate()
	require.Nil(t, store.Current())
}

func TestStoreSetSurvivesRepoFailure(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	repo.SaveErr = errors.New("disk full")

	store := session.NewStore(repo)
	require.NoError(t, store.Set(testSession()))
	require.Equal(t, testAccessToken, store.Token())
}
