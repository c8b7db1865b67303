// Package cache provides the key-value roll-state store used for last-roll
// snapshots and combat initiative tracking.
//
// Keys are namespaced strings (see keys.go), values are small JSON documents.
// Concurrent chat events read-modify-write shared entries (two players rolling
// initiative on the same campaign), so every mutation of shared state goes
// through Update rather than a bare Get/Set pair.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("cache: key not found")

// UpdateFn transforms the current value of a key. old is nil when the key is
// absent. Returning a nil new value deletes the key.
type UpdateFn func(old []byte) ([]byte, error)

// Store is the roll-state key-value store.
//
// Implementations MUST be safe for concurrent use and MUST apply Update as an
// atomic read-modify-write with respect to other Store operations on the same
// key.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. ttl == 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Update applies fn atomically to the current value of key.
	// Errors returned by fn abort the update and are returned verbatim.
	Update(ctx context.Context, key string, fn UpdateFn) error
}
