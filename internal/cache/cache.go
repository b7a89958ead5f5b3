// Package cache stores JSON documents on disk with a time to live.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type cachedEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
}

type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// DefaultDir is the cache directory next to the config file.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mate-review", "cache"), nil
}

// NewCache creates dir if needed and drops expired entries.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating cache directory: %w", err)
	}

	c := &Cache{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}
	_ = c.CleanExpired()

	return c, nil
}

// Key hashes parts into a file-safe key.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(hash[:])
}

func (c *Cache) Dir() string {
	return c.dir
}

// Get decodes the entry into out. Missing and expired entries report false.
func (c *Cache) Get(key string, out interface{}) (bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("error reading cache: %w", err)
	}

	var entry cachedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return false, fmt.Errorf("error decoding cache entry: %w", err)
	}

	if c.now().Sub(entry.CreatedAt) > c.ttl {
		_ = os.Remove(path)
		return false, nil
	}

	if err := json.Unmarshal(entry.Value, out); err != nil {
		return false, fmt.Errorf("error decoding cached value: %w", err)
	}
	return true, nil
}

func (c *Cache) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding value: %w", err)
	}

	data, err := json.MarshalIndent(cachedEntry{
		Key:       key,
		Value:     raw,
		CreatedAt: c.now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding cache entry: %w", err)
	}

	if err := os.WriteFile(c.path(key), data, 0600); err != nil {
		return fmt.Errorf("error writing cache: %w", err)
	}
	return nil
}

func (c *Cache) Delete(key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error deleting cache entry: %w", err)
	}
	return nil
}

// CleanExpired removes entries older than the ttl, going by file mtime.
func (c *Cache) CleanExpired() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("error reading cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if c.now().Sub(info.ModTime()) > c.ttl {
			_ = os.Remove(filepath.Join(c.dir, entry.Name()))
		}
	}

	return nil
}

// Clean removes the whole cache directory.
func (c *Cache) Clean() error {
	return os.RemoveAll(c.dir)
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
