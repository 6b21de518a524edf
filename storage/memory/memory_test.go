package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openboard/openboard/storage/storagetest"
)

func TestStore_Conformance(t *testing.T) {
	storagetest.Run(t, NewStore())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put("k", []byte("value")))

	got, err := s.Get("k")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), again)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Put("shared", []byte("v"))
				_, _ = s.Get("shared")
				_ = s.Delete("shared")
			}
		}()
	}
	wg.Wait()
}
