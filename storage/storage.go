// Package storage provides pluggable backend interfaces for storage operations.
package storage

import "context"

// Store is the pluggable blob backend interface.
//
// The reconciliation engine reads desired-state objects through List and Get and
// writes the packaged mapping archive through Put. Keys are "/"-separated paths
// relative to the backend's bucket.
//
// Example implementations:
//   - s3store.Store: AWS S3 backend
//   - testutil.MemoryStore: in-memory backend for tests
type Store interface {
	// Put stores binary data at the specified key, overwriting any existing value.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves binary data for the specified key.
	// Returns an error matching errors.ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys matching the specified prefix in lexicographic order.
	// Returns an empty slice if no keys match the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the specified key.
	// Returns nil if the key doesn't exist (idempotent operation).
	Delete(ctx context.Context, key string) error
}

// Locator is implemented by stores that can name the bucket holding their keys.
// Consumers outside the store (a function code update, for instance) need the
// bucket to reference an object.
type Locator interface {
	Bucket() string
}
