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
	"io"
	"time"

	"fusekit/internal/vfs"
)

// CachedFS wraps a Filesystem with an attribute cache. Getattr is
// answered from the cache when possible; lookups and attribute-changing
// operations keep it coherent. Useful in front of backends whose
// Getattr is not a cheap map access.
type CachedFS struct {
	inner vfs.Filesystem
	attrs *AttrCache
}

// NewCachedFS wraps inner with an attribute cache using the given TTL.
func NewCachedFS(inner vfs.Filesystem, ttl time.Duration) *CachedFS {
	return &CachedFS{
		inner: inner,
		attrs: NewAttrCache(ttl, 0),
	}
}

// Cache exposes the underlying attribute cache, mainly for stats.
func (c *CachedFS) Cache() *AttrCache {
	return c.attrs
}

// Lookup delegates and feeds the cache with the resolved attributes.
func (c *CachedFS) Lookup(parent vfs.Ino, name string) (vfs.Lookup, error) {
	obj, err := c.inner.Lookup(parent, name)
	if err != nil {
		return vfs.Lookup{}, err
	}
	c.attrs.Set(obj.Ino, obj.Attributes)
	return obj, nil
}

// Getattr answers from the cache when it can.
func (c *CachedFS) Getattr(ino vfs.Ino) (vfs.FileAttributes, error) {
	if attrs, ok := c.attrs.Get(ino); ok {
		return attrs, nil
	}

	attrs, err := c.inner.Getattr(ino)
	if err != nil {
		return vfs.FileAttributes{}, err
	}
	c.attrs.Set(ino, attrs)
	return attrs, nil
}

// Setattr delegates and re-caches the merged result.
func (c *CachedFS) Setattr(ino vfs.Ino, update vfs.SetFileAttributes) (vfs.FileAttributes, error) {
	attrs, err := c.inner.Setattr(ino, update)
	if err != nil {
		c.attrs.InvalidateIno(ino)
		return vfs.FileAttributes{}, err
	}
	c.attrs.Set(ino, attrs)
	return attrs, nil
}

func (c *CachedFS) Open(ino vfs.Ino, flags uint32) (vfs.OpenResult, error) {
	return c.inner.Open(ino, flags)
}

func (c *CachedFS) OpenDir(ino vfs.Ino, flags uint32) (vfs.OpenResult, error) {
	return c.inner.OpenDir(ino, flags)
}

func (c *CachedFS) Setxattr(ino vfs.Ino, name string, value []byte, flag vfs.XattrFlag) error {
	return c.inner.Setxattr(ino, name, value, flag)
}

func (c *CachedFS) Getxattr(ino vfs.Ino, name string, size uint32) (vfs.XattrValue, error) {
	return c.inner.Getxattr(ino, name, size)
}

func (c *CachedFS) Listxattrs(ino vfs.Ino, size uint32) (vfs.XattrValue, error) {
	return c.inner.Listxattrs(ino, size)
}

func (c *CachedFS) Readdir(dir vfs.Ino, offset uint64) ([]vfs.DirEntry, error) {
	return c.inner.Readdir(dir, offset)
}

func (c *CachedFS) Read(ino vfs.Ino, offset uint64, size uint32) ([]byte, error) {
	return c.inner.Read(ino, offset, size)
}

// Write delegates and drops the cached attributes, since size and
// times change underneath the cache.
func (c *CachedFS) Write(ino vfs.Ino, offset uint64, size uint32, src io.Reader) (uint32, error) {
	n, err := c.inner.Write(ino, offset, size, src)
	c.attrs.InvalidateIno(ino)
	return n, err
}

var _ vfs.Filesystem = (*CachedFS)(nil)
