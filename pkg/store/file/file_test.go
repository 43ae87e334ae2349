package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/passkeep/pkg/model"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
	"github.com/doodlesbykumbi/passkeep/pkg/store/storetest"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "passwords.json"), opts...)
}

func TestStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Storage {
		return newTestStore(t)
	})
}

func TestStore_WritesIndentedJSON(t *testing.T) {
	s := newTestStore(t)

	err := s.SaveAll(context.Background(), []model.Account{{Name: "github", Password: "s3cret"}})
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"name\": \"github\",\n    \"password\": \"s3cret\"\n  }\n]\n", string(data))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, DefaultFileMode, info.Mode().Perm())
}

func TestStore_SaveEmptyWritesArray(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveAll(context.Background(), nil))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "passwords.json")
	s := New(path)

	require.NoError(t, s.SaveAll(context.Background(), []model.Account{{Name: "a", Password: "1"}}))
	assert.FileExists(t, path)
}

func TestStore_LoadEmptyFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("  \n"), 0o600))

	accounts, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestStore_LoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `[{"name": "a", "password": `},
		{"object instead of array", `{"name": "a", "password": "1"}`},
		{"wrong field type", `[{"name": 7, "password": "1"}]`},
		{"empty name", `[{"name": "", "password": "1"}]`},
		{"duplicate name", `[{"name": "a", "password": "1"}, {"name": "a", "password": "2"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.content), 0o600))

			_, err := s.LoadAll(context.Background())
			assert.ErrorIs(t, err, store.ErrStorageCorrupt)

			_, err = s.GetByName(context.Background(), "a")
			assert.ErrorIs(t, err, store.ErrStorageCorrupt)
		})
	}
}

func TestStore_LenientLoad(t *testing.T) {
	s := newTestStore(t, WithLenientLoad())
	require.NoError(t, os.WriteFile(s.Path(), []byte("not json"), 0o600))

	accounts, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestStore_CorruptFileIsNotOverwrittenByDelete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("not json"), 0o600))

	err := s.DeleteByName(context.Background(), "a")
	assert.ErrorIs(t, err, store.ErrStorageCorrupt)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "not json", string(data))
}

func TestStore_LoadUnreadable(t *testing.T) {
	s := newTestStore(t)
	// a directory where the file should be cannot be read as one
	require.NoError(t, os.Mkdir(s.Path(), 0o700))

	_, err := s.LoadAll(context.Background())
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestStore_DeleteMissingDoesNotWrite(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.DeleteByName(context.Background(), "ghost"))
	assert.NoFileExists(t, s.Path())
}

func TestStore_CanceledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
