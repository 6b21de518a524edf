// Package storagetest provides a conformance suite that every storage.Store
// implementation must pass.
package storagetest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openboard/openboard/storage"
)

// Run exercises the common Store contract against the given implementation.
func Run(t *testing.T, store storage.Store) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		require.NoError(t, store.Put("token", []byte("abc")))
		got, err := store.Get("token")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get("no-such-key")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Put("k", []byte("v1")))
		require.NoError(t, store.Put("k", []byte("v2")))
		got, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put("gone", []byte("x")))
		require.NoError(t, store.Delete("gone"))
		_, err := store.Get("gone")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		require.NoError(t, store.Delete("never-existed"))
	})

	t.Run("BatchAppliesAll", func(t *testing.T) {
		err := store.Batch(func(tx storage.BatchTx) error {
			if err := tx.Put("a", []byte("1")); err != nil {
				return err
			}
			return tx.Put("b", []byte("2"))
		})
		require.NoError(t, err)

		a, err := store.Get("a")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), a)
		b, err := store.Get("b")
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), b)
	})

	t.Run("BatchRollsBackOnError", func(t *testing.T) {
		require.NoError(t, store.Put("keep", []byte("before")))

		boom := errors.New("boom")
		err := store.Batch(func(tx storage.BatchTx) error {
			if err := tx.Put("keep", []byte("after")); err != nil {
				return err
			}
			if err := tx.Put("orphan", []byte("x")); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := store.Get("keep")
		require.NoError(t, err)
		assert.Equal(t, []byte("before"), got)
		_, err = store.Get("orphan")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("BatchDeletes", func(t *testing.T) {
		require.NoError(t, store.Put("t1", []byte("x")))
		require.NoError(t, store.Put("t2", []byte("y")))
		err := store.Batch(func(tx storage.BatchTx) error {
			if err := tx.Delete("t1"); err != nil {
				return err
			}
			return tx.Delete("t2")
		})
		require.NoError(t, err)
		_, err = store.Get("t1")
		require.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.Get("t2")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}
