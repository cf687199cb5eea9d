package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores fetched index text under a directory on disk, one
// file per entry. It is the CLI default: a Packages index for a stable
// release changes a few times a day at most, so keeping the
// decompressed text locally avoids refetching multi-megabyte files on
// every graph build.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// indexEntry is the on-disk envelope around a cached index. FetchedAt
// is informational (visible when inspecting the cache directory);
// expiry is decided by ExpiresAt alone.
type indexEntry struct {
	Data      []byte    `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a cached index. Expired or unreadable entries are
// removed and reported as a miss, so a corrupt cache never blocks a
// fetch.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry indexEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set stores an index with the given TTL. A ttl of 0 stores it without
// expiration.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := indexEntry{
		Data:      data,
		FetchedAt: time.Now(),
	}
	if ttl > 0 {
		entry.ExpiresAt = entry.FetchedAt.Add(ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, entryData, 0644)
}

// Delete removes an entry. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// path maps a key to dir/<hash[:2]>/<hash[2:]>.json. Keys are already
// hashed by IndexKey, but hashing here again keeps arbitrary keys safe
// as filenames and spreads entries over subdirectories.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	subdir := hash[:2]
	filename := hash[2:] + ".json"
	return filepath.Join(c.dir, subdir, filename)
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
