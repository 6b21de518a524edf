// Package storage provides the durable key-value store used to persist
// session state across process restarts.
package storage

import "errors"

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("key not found")

// BatchTx provides Put and Delete within an atomic batch.
type BatchTx interface {
	Put(key string, value []byte) error
	Delete(key string) error
}

// Store defines the interface for durable session persistence.
//
// Batch applies every mutation made inside fn atomically: either all of them
// survive a process crash or none do. The session manager relies on this to
// keep its access-token/refresh-token/user triple all-present or all-absent.
//
// Delete of a missing key is not an error.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Batch(fn func(tx BatchTx) error) error
	Close() error
}
