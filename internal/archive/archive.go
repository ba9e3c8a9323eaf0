// Package archive persists the order audit trail: append-only JSON records
// of write operations the gateway performed. The brokerage remains the
// state of record; the trail exists for replay and debugging.
package archive

import "context"

// Store is a flat blob store keyed by slash-separated paths.
type Store interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}
