// Copyright 2026 FuseKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"sync"
	"time"

	"fusekit/internal/vfs"
)

// AttrCache caches file attributes by inode with TTL-based expiration.
//
// Thread-safe: uses RWMutex for concurrent access.
type AttrCache struct {
	mu      sync.RWMutex
	entries map[vfs.Ino]*attrEntry
	ttl     time.Duration
	maxSize int
}

type attrEntry struct {
	attrs   vfs.FileAttributes
	expires time.Time
}

// NewAttrCache creates a new attribute cache.
// ttl: time-to-live for cached entries (use 0 for no expiration)
// maxSize: maximum number of entries (use 0 for unlimited)
func NewAttrCache(ttl time.Duration, maxSize int) *AttrCache {
	return &AttrCache{
		entries: make(map[vfs.Ino]*attrEntry, 256),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves cached attributes for an inode. ok is false if absent,
// expired, or caching is disabled (FUSEKIT_CACHE=0).
func (c *AttrCache) Get(ino vfs.Ino) (vfs.FileAttributes, bool) {
	if Disabled {
		return vfs.FileAttributes{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[ino]
	if !ok {
		return vfs.FileAttributes{}, false
	}
	if c.ttl > 0 && time.Now().After(entry.expires) {
		return vfs.FileAttributes{}, false
	}
	return entry.attrs, true
}

// Set stores attributes for an inode.
// No-op if caching is disabled (FUSEKIT_CACHE=0).
func (c *AttrCache) Set(ino vfs.Ino, attrs vfs.FileAttributes) {
	if Disabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// At capacity: refresh known inodes but don't add new ones.
	// A more sophisticated implementation could use LRU eviction.
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		if _, exists := c.entries[ino]; !exists {
			return
		}
	}

	expires := time.Time{} // no expiration by default
	if c.ttl > 0 {
		expires = time.Now().Add(c.ttl)
	}

	c.entries[ino] = &attrEntry{attrs: attrs, expires: expires}
}

// Invalidate clears all entries from the cache.
func (c *AttrCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > 0 {
		c.entries = make(map[vfs.Ino]*attrEntry, 256)
	}
}

// InvalidateIno removes a specific inode from the cache.
func (c *AttrCache) InvalidateIno(ino vfs.Ino) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, ino)
}

// Size returns the current number of entries in the cache.
func (c *AttrCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// AttrCacheStats is a snapshot of cache configuration and load.
type AttrCacheStats struct {
	Size    int
	MaxSize int
	TTL     time.Duration
}

// Stats returns current cache statistics.
func (c *AttrCache) Stats() AttrCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return AttrCacheStats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
		TTL:     c.ttl,
	}
}
