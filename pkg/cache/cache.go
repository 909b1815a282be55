// Package cache provides the persistent result cache used by the CLI and the
// HTTP API.
//
// Solving a pair of trees can take minutes, so finished results are stored
// under a key derived from the canonical form of the instance. Backends:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (API servers)
//
// Keys are produced by a [Keyer]; [NewScopedKeyer] prefixes them to keep
// tenants or environments apart.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Entry lifetimes. Results never change for a given key, so the TTLs only
// bound disk and memory use.
const (
	TTLResult   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
