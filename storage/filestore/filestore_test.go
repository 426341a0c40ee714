package filestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/storage/filestore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetGetRemove(t *testing.T) {
	store, err := filestore.New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	_, ok := store.Get("auth.access_token")
	require.False(t, ok)

	require.NoError(t, store.Set("auth.access_token", "value-1"))
	value, ok := store.Get("auth.access_token")
	require.True(t, ok)
	require.Equal(t, "value-1", value)

	require.NoError(t, store.Remove("auth.access_token"))
	_, ok = store.Get("auth.access_token")
	require.False(t, ok)
}

func TestValuesSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := filestore.New(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Set("auth.refresh_token", "rt1"))

	reopened, err := filestore.New(dir, zerolog.Nop())
	require.NoError(t, err)
	value, ok := reopened.Get("auth.refresh_token")
	require.True(t, ok)
	require.Equal(t, "rt1", value)
}

func TestCorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tokens.json"), []byte("{not json"), 0o600))

	store, err := filestore.New(dir, zerolog.Nop())
	require.NoError(t, err)
	_, ok := store.Get("auth.access_token")
	require.False(t, ok)
}

func TestFilePermissions(t *testing.T) {
	dir := t.TempDir()

	store, err := filestore.New(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Set("auth.access_token", "value-1"))

	info, err := os.Stat(filepath.Join(dir, "tokens.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
