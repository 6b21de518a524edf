package bbolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openboard/openboard/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := NewStoreFromFile(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Conformance(t *testing.T) {
	storagetest.Run(t, newTestStore(t))
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := NewStoreFromFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put("token", []byte("persisted")))
	require.NoError(t, s.Close())

	s2, err := NewStoreFromFile(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get("token")
	require.NoError(t, err)
	require.Equal(t, []byte("persisted"), got)
}
