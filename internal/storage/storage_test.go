package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreRoundTrip(t *testing.T, s Store) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := s.Get("missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.Set("budget/state", []byte(`{"daily":12}`)))
		v, ok, err := s.Get("budget/state")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte(`{"daily":12}`), v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set("budget/state", []byte(`{"daily":13}`)))
		v, _, err := s.Get("budget/state")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"daily":13}`), v)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete("budget/state"))
		_, ok, err := s.Get("budget/state")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete missing is not an error", func(t *testing.T) {
		assert.NoError(t, s.Delete("never-existed"))
	})
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestMemStore_FailWrites(t *testing.T) {
	s := NewMemStore()
	defer s.Close()
	s.FailWrites = true
	assert.Error(t, s.Set("k", []byte("v")))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestFileStore_KeySanitization(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("cache/responses", []byte("x")))
	v, ok, err := s.Get("cache/responses")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("x"), v)

	// Separator must not escape the base dir.
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set("usage", []byte("42")))
	require.NoError(t, s.Close())

	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get("usage")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("42"), v)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("usage", []byte("42")))
	require.NoError(t, s.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get("usage")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("42"), v)
}
