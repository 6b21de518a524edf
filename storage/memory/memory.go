// Package memory provides a thread-safe in-memory implementation of storage.Store.
package memory

import (
	"sync"

	"github.com/openboard/openboard/storage"
)

// Store is a thread-safe in-memory implementation of storage.Store.
// Suitable for testing, demos, and throwaway sessions.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Store = (*Store)(nil)

// NewStore creates a new empty in-memory Store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}

func (s *Store) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneBytes(v), nil
}

func (s *Store) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = cloneBytes(value)
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Batch executes fn against a private copy of the data. On error nothing is
// applied; on success the copy replaces the live map in one step.
func (s *Store) Batch(fn func(tx storage.BatchTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		cp[k] = v
	}
	if err := fn(&memoryBatchTx{data: cp}); err != nil {
		return err
	}
	s.data = cp
	return nil
}

func (s *Store) Close() error {
	return nil
}

type memoryBatchTx struct {
	data map[string][]byte
}

func (tx *memoryBatchTx) Put(key string, value []byte) error {
	tx.data[key] = cloneBytes(value)
	return nil
}

func (tx *memoryBatchTx) Delete(key string) error {
	delete(tx.data, key)
	return nil
}
