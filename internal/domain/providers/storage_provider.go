package providers

import "context"

// StorageProvider is the key-value store every repository persists into.
// Values are whole JSON documents; Set overwrites unconditionally.
type StorageProvider interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value stored under key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
