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

// Package inode is an in-memory hierarchical namespace: a flat table of
// numbered entries with parent back-references, generic over the file
// payload type. Backends that want a ready-made namespace build on
// Table; the dispatch layer never touches this package.
package inode

import (
	"iter"
	"syscall"

	"fusekit/internal/vfs"
)

// FilePayload is what the table requires of its opaque file type:
// exposing its own attributes, nothing more.
type FilePayload interface {
	Attrs() vfs.FileAttributes
}

// Directory maps child names to inode numbers. Names are raw bytes,
// case-sensitive, unique within one directory. Enumeration follows
// insertion order, which keeps readdir cursors stable for an unmodified
// directory.
type Directory struct {
	attrs    vfs.FileAttributes
	children map[string]vfs.Ino
	order    []string
}

// NewDirectory returns an empty directory with default attributes.
func NewDirectory() *Directory {
	return &Directory{
		attrs:    vfs.NewFileAttributes(syscall.S_IFDIR | 0o755),
		children: make(map[string]vfs.Ino),
	}
}

// Get returns the inode a name maps to.
func (d *Directory) Get(name string) (vfs.Ino, bool) {
	ino, ok := d.children[name]
	return ino, ok
}

// Len returns the number of children.
func (d *Directory) Len() int {
	return len(d.order)
}

// Children enumerates (name, inode) pairs in insertion order. The
// sequence is restartable and reflects the directory at the time of
// each range, not a snapshot.
func (d *Directory) Children() iter.Seq2[string, vfs.Ino] {
	return func(yield func(string, vfs.Ino) bool) {
		for _, name := range d.order {
			if !yield(name, d.children[name]) {
				return
			}
		}
	}
}

// Attrs returns the directory's attributes.
func (d *Directory) Attrs() vfs.FileAttributes {
	return d.attrs
}

// ApplyAttrs merges a sparse update into the directory's attributes and
// returns the result.
func (d *Directory) ApplyAttrs(update vfs.SetFileAttributes) vfs.FileAttributes {
	d.attrs = d.attrs.Apply(update)
	return d.attrs
}

func (d *Directory) insert(name string, ino vfs.Ino) {
	if _, exists := d.children[name]; !exists {
		d.order = append(d.order, name)
	}
	d.children[name] = ino
}

// Entry is one live namespace node: a parent back-reference plus a
// closed Directory-or-File kind. The parent is stored as a plain inode
// number, never a pointer, so resolving it is always a fresh table
// lookup and parent/child cycles cannot form.
type Entry[F FilePayload] struct {
	parent vfs.Ino // 0 for the root, which has no parent
	dir    *Directory
	file   F
	isFile bool
}

// NewDir wraps a fresh Directory as an insertable entry.
func NewDir[F FilePayload]() *Entry[F] {
	return &Entry[F]{dir: NewDirectory()}
}

// NewFile wraps a file payload as an insertable entry.
func NewFile[F FilePayload](file F) *Entry[F] {
	return &Entry[F]{file: file, isFile: true}
}

// Parent returns the parent inode. ok is false only for the root.
func (e *Entry[F]) Parent() (vfs.Ino, bool) {
	return e.parent, e.parent != 0
}

// IsDir reports whether the entry is a directory.
func (e *Entry[F]) IsDir() bool {
	return !e.isFile
}

// Dir returns the directory value, or ok=false for a file entry.
func (e *Entry[F]) Dir() (*Directory, bool) {
	if e.isFile {
		return nil, false
	}
	return e.dir, true
}

// File returns the file payload, or ok=false for a directory entry.
func (e *Entry[F]) File() (F, bool) {
	if !e.isFile {
		var zero F
		return zero, false
	}
	return e.file, true
}

// FileType returns the dirent type tag for the entry.
func (e *Entry[F]) FileType() vfs.FileType {
	if e.isFile {
		return vfs.FileTypeRegular
	}
	return vfs.FileTypeDirectory
}

// Attrs returns the entry's attributes, whichever kind it is.
func (e *Entry[F]) Attrs() vfs.FileAttributes {
	if e.isFile {
		return e.file.Attrs()
	}
	return e.dir.Attrs()
}
