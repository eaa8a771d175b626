// Package storage provides the device-local key/value persistence used
// by the cache and budget subsystems. Writes are best-effort: callers
// treat a failed write as a degraded state, never a fatal one.
package storage

import "errors"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Store is a synchronous key/value store. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the stored value and whether the key existed.
	Get(key string) ([]byte, bool, error)

	// Set writes or replaces the value for key.
	Set(key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases underlying resources.
	Close() error
}
