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

package vfs

import "time"

const (
	// DefaultSize is the size reported for entries that never set one.
	// One page keeps stat output sane for synthetic directories.
	DefaultSize uint64 = 4096

	// DefaultAttrTTL is how long the kernel may cache attributes
	// unless the backend overrides it.
	DefaultAttrTTL = 1 * time.Second
)

// FileAttributes is the full POSIX-like metadata for one entry.
// Mode is mandatory; construct with NewFileAttributes to pick up the
// size and TTL defaults.
type FileAttributes struct {
	Mode  uint32
	Size  uint64
	Nlink uint32

	UID uint32
	GID uint32

	Rdev    uint32
	Blksize uint32
	Blocks  uint64

	Atime time.Time
	Mtime time.Time
	Ctime time.Time

	// TTL is the remaining duration the kernel may treat a cached copy
	// of these attributes as valid. A duration from now, not a deadline.
	TTL time.Duration
}

// NewFileAttributes returns attributes for the given mode with defaults
// applied to every other field.
func NewFileAttributes(mode uint32) FileAttributes {
	return FileAttributes{
		Mode: mode,
		Size: DefaultSize,
		TTL:  DefaultAttrTTL,
	}
}

// SetFileAttributes is a sparse attribute update. Nil fields mean
// "leave unchanged". Decoded from a setattr request, where unset wire
// fields map to nil.
type SetFileAttributes struct {
	Mode *uint32
	Size *uint64

	UID *uint32
	GID *uint32

	Atime *time.Time
	Mtime *time.Time
	Ctime *time.Time
}

// Apply overwrites each field of a that is set in update and returns the
// result. Fields left nil in update are untouched, so applying the same
// update twice is a no-op the second time.
//
// Every field of SetFileAttributes must have a copy clause here; the
// field-coverage test in attrs_test.go fails if one is added without it.
func (a FileAttributes) Apply(update SetFileAttributes) FileAttributes {
	if update.Mode != nil {
		a.Mode = *update.Mode
	}
	if update.Size != nil {
		a.Size = *update.Size
	}
	if update.UID != nil {
		a.UID = *update.UID
	}
	if update.GID != nil {
		a.GID = *update.GID
	}
	if update.Atime != nil {
		a.Atime = *update.Atime
	}
	if update.Mtime != nil {
		a.Mtime = *update.Mtime
	}
	if update.Ctime != nil {
		a.Ctime = *update.Ctime
	}
	return a
}
