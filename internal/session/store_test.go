package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalev/gymdesk/internal/backend"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStoreAt(t.TempDir())

	require.NoError(t, s.Save("refresh-token-abc"))
	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "refresh-token-abc", got)
}

func TestStoreLoadAbsent(t *testing.T) {
	s := NewStoreAt(filepath.Join(t.TempDir(), "nested"))

	_, err := s.Load()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreClear(t *testing.T) {
	s := NewStoreAt(t.TempDir())

	require.NoError(t, s.Save("tok"))
	require.NoError(t, s.Clear())
	_, err := s.Load()
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Clear()) // absent file is fine
}

func TestStoreCiphertextNotPlaintext(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreAt(dir)
	require.NoError(t, s.Save("super-secret-token"))

	data, err := os.ReadFile(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	require.NotContains(t, string(data), "super-secret-token")
}

func TestHolder(t *testing.T) {
	h := NewHolder()

	_, ok := h.Get()
	require.False(t, ok)

	h.Set(backend.Session{AccessToken: "a1"})
	got, ok := h.Get()
	require.True(t, ok)
	require.Equal(t, "a1", got.AccessToken)

	h.Clear()
	_, ok = h.Get()
	require.False(t, ok)
}
