// Package cache provides pluggable caching for fetched package
// indices.
//
// Downloading and decompressing a distribution's Packages index is by
// far the slowest step of a graph build, so the HTTP source stores the
// decompressed text here keyed by URL. Three backends are provided:
//
//   - FileCache: hash-sharded files on disk, the CLI default
//   - RedisCache: shared cache for server deployments
//   - NullCache: caching disabled (--no-cache)
//
// Keys are hashed with SHA-256 before use, so arbitrary strings
// (URLs included) are safe keys for every backend.
package cache

import (
	"context"
	"time"
)

// Cache stores raw byte values with per-entry expiration.
//
// Implementations must treat a missing key as (nil, false, nil), not
// an error. Expired entries count as missing. Implementations need not
// be goroutine-safe unless documented otherwise.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// IndexKey builds the cache key for a repository index fetched from
// the given location (URL or path).
func IndexKey(location string) string {
	return "index:" + Hash([]byte(location))
}
