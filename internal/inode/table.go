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

package inode

import (
	"fusekit/internal/common"
	"fusekit/internal/vfs"
)

// Table owns the full inode -> entry mapping and the allocation
// counter. A new table holds only the root directory at vfs.RootIno.
// Entries are only ever inserted; there is no delete, so inode numbers
// are never reclaimed and the counter never wraps back.
//
// A flat map keyed by inode number, rather than a tree of owned nodes,
// keeps the parent back-reference a lookup key instead of a structural
// pointer.
type Table[F FilePayload] struct {
	entries map[vfs.Ino]*Entry[F]
	next    vfs.Ino
}

// NewTable creates a table containing only the root directory.
func NewTable[F FilePayload]() *Table[F] {
	entries := make(map[vfs.Ino]*Entry[F], 24)
	entries[vfs.RootIno] = &Entry[F]{dir: NewDirectory()}

	return &Table[F]{
		entries: entries,
		next:    vfs.RootIno + 1,
	}
}

// PushEntry allocates the next inode number for entry and links it
// under parent as name. ok is false when parent does not exist or is
// not a directory; nothing is inserted in that case. Each allocated
// inode is strictly greater than every one before it.
func (t *Table[F]) PushEntry(parent vfs.Ino, name string, entry *Entry[F]) (vfs.Ino, bool) {
	parentEntry, ok := t.entries[parent]
	if !ok {
		return 0, false
	}
	dir, ok := parentEntry.Dir()
	if !ok {
		return 0, false
	}

	ino := t.next
	t.next++

	entry.parent = parent
	dir.insert(name, ino)
	t.entries[ino] = entry

	return ino, true
}

// Get looks an entry up by inode number. Absence is a normal outcome,
// not an error; callers translate it to their own "no entry" condition.
// The returned pointer is the live entry, so it serves both read and
// write access.
func (t *Table[F]) Get(ino vfs.Ino) (*Entry[F], bool) {
	entry, ok := t.entries[ino]
	return entry, ok
}

// Lookup resolves a slash-separated path from the root. A leading slash
// is optional: "a/b" and "/a/b" resolve identically. Resolution fails
// at the first missing component or non-directory intermediate.
func (t *Table[F]) Lookup(path string) (vfs.Ino, *Entry[F], bool) {
	ino := vfs.RootIno
	entry := t.entries[ino]

	for _, component := range common.SplitPath(path) {
		dir, ok := entry.Dir()
		if !ok {
			return 0, nil, false
		}
		child, ok := dir.Get(component)
		if !ok {
			return 0, nil, false
		}
		next, ok := t.entries[child]
		if !ok {
			return 0, nil, false
		}
		ino, entry = child, next
	}

	return ino, entry, true
}
