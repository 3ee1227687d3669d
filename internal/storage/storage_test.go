package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestStore_SetGetDelete(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "state.json"))

	var got record
	ok, err := s.Get("user", &got)
	require.NoError(t, err)
	assert.False(t, ok, "empty store has no keys")

	require.NoError(t, s.Set("user", record{ID: 1, Name: "a"}))
	require.NoError(t, s.Set("other", "x"))

	ok, err = s.Get("user", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, record{ID: 1, Name: "a"}, got)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "user"}, keys)

	require.NoError(t, s.Delete("user"))
	require.NoError(t, s.Delete("user"), "delete is idempotent")

	ok, err = s.Get("user", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SurvivesNewInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, New(path).Set("user", record{ID: 7}))

	var got record
	ok, err := New(path).Get("user", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), got.ID)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s := New(path)

	var got record
	_, err := s.Get("user", &got)
	assert.Error(t, err)

	require.NoError(t, s.Set("user", record{ID: 2}), "writing replaces a corrupt document")
	ok, err := s.Get("user", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), got.ID)
}
