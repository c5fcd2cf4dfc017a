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

// Package cache provides caching for the filesystem layer.
//
// Design principles:
// 1. Fine-grained invalidation - invalidate only affected inodes, not the whole cache
// 2. Single layer ownership - a cache lives in one wrapper, no cross-layer signaling
//
// Currently provides:
// - AttrCache: TTL-based attribute cache keyed by inode
// - CachedFS: a Filesystem wrapper feeding an AttrCache from lookup/getattr traffic
package cache

import "os"

// Disabled turns every cache into a pass-through. Set via the
// FUSEKIT_CACHE=0 environment variable. Useful for isolating
// cache-related bugs: the logic runs identically, just uncached.
var Disabled = os.Getenv("FUSEKIT_CACHE") == "0"

// Invalidator is implemented by all caches that support full invalidation.
type Invalidator interface {
	// Invalidate clears all entries from the cache.
	Invalidate()
}
