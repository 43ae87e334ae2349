// Package storetest holds the behaviour every store.Storage implementation
// must show. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Storage

// Run executes the shared suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("EmptyOnFirstUse", func(t *testing.T) { testEmptyOnFirstUse(t, newStore(t)) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, newStore(t)) })
	t.Run("SaveAllReplaces", func(t *testing.T) { testSaveAllReplaces(t, newStore(t)) })
	t.Run("SaveAllEmpty", func(t *testing.T) { testSaveAllEmpty(t, newStore(t)) })
	t.Run("SaveAllRejectsInvalid", func(t *testing.T) { testSaveAllRejectsInvalid(t, newStore(t)) })
	t.Run("GetByNameCaseSensitive", func(t *testing.T) { testGetByNameCaseSensitive(t, newStore(t)) })
	t.Run("DeleteIdempotent", func(t *testing.T) { testDeleteIdempotent(t, newStore(t)) })
	t.Run("DeleteOnEmptyMedium", func(t *testing.T) { testDeleteOnEmptyMedium(t, newStore(t)) })

	t.Run("Update", func(t *testing.T) {
		s := newStore(t)
		if _, ok := s.(store.Updater); !ok {
			t.Skip("backend does not implement store.Updater")
		}
		testUpdate(t, s)
	})
}

func testEmptyOnFirstUse(t *testing.T, s store.Storage) {
	ctx := context.Background()

	accounts, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)

	got, err := s.GetByName(ctx, "github")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testRoundTrip(t *testing.T, s store.Storage) {
	ctx := context.Background()
	want := []model.Account{
		{Name: "github", Password: "s3cr3t"},
		{Name: "email", Password: `pa"ss\word with spaces`},
		{Name: "bank", Password: "pässwörd-🔑"},
	}

	require.NoError(t, s.SaveAll(ctx, want))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)

	for _, a := range want {
		found, err := s.GetByName(ctx, a.Name)
		require.NoError(t, err)
		require.NotNil(t, found, a.Name)
		assert.Equal(t, a.Password, found.Password)
	}
}

func testSaveAllReplaces(t *testing.T, s store.Storage) {
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, []model.Account{{Name: "a", Password: "1"}, {Name: "b", Password: "2"}}))
	require.NoError(t, s.SaveAll(ctx, []model.Account{{Name: "b", Password: "22"}, {Name: "c", Password: "3"}}))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Account{{Name: "b", Password: "22"}, {Name: "c", Password: "3"}}, got)

	gone, err := s.GetByName(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func testSaveAllEmpty(t *testing.T, s store.Storage) {
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, []model.Account{{Name: "a", Password: "1"}}))
	require.NoError(t, s.SaveAll(ctx, nil))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testSaveAllRejectsInvalid(t *testing.T, s store.Storage) {
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, []model.Account{{Name: "keep", Password: "1"}}))

	err := s.SaveAll(ctx, []model.Account{{Name: "x", Password: "1"}, {Name: "x", Password: "2"}})
	assert.ErrorIs(t, err, model.ErrDuplicateName)

	err = s.SaveAll(ctx, []model.Account{{Name: "", Password: "1"}})
	assert.ErrorIs(t, err, model.ErrEmptyName)

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Account{{Name: "keep", Password: "1"}}, got)
}

func testGetByNameCaseSensitive(t *testing.T, s store.Storage) {
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, []model.Account{{Name: "GitHub", Password: "upper"}}))

	got, err := s.GetByName(ctx, "github")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.GetByName(ctx, "GitHub")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "upper", got.Password)
}

func testDeleteIdempotent(t *testing.T, s store.Storage) {
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, []model.Account{{Name: "a", Password: "1"}, {Name: "b", Password: "2"}}))

	require.NoError(t, s.DeleteByName(ctx, "a"))
	require.NoError(t, s.DeleteByName(ctx, "a"))
	require.NoError(t, s.DeleteByName(ctx, "never-existed"))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Account{{Name: "b", Password: "2"}}, got)
}

func testDeleteOnEmptyMedium(t *testing.T, s store.Storage) {
	require.NoError(t, s.DeleteByName(context.Background(), "ghost"))
}

func testUpdate(t *testing.T, s store.Storage) {
	ctx := context.Background()
	u := s.(store.Updater)

	err := u.Update(ctx, func(accounts []model.Account) ([]model.Account, error) {
		assert.Empty(t, accounts)
		return append(accounts, model.Account{Name: "first", Password: "1"}), nil
	})
	require.NoError(t, err)

	abort := errors.New("abort")
	err = u.Update(ctx, func(accounts []model.Account) ([]model.Account, error) {
		return nil, abort
	})
	assert.ErrorIs(t, err, abort)

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Account{{Name: "first", Password: "1"}}, got)
}
