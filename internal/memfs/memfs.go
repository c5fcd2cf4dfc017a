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

// Package memfs is an in-memory filesystem backend built on the inode
// table. It implements the full capability interface and is what the
// demo CLI serves; it also doubles as the reference backend for the
// dispatch tests.
package memfs

import (
	"io"
	"sort"
	"syscall"

	"fusekit/internal/inode"
	"fusekit/internal/vfs"
)

// File is the table payload: raw content plus attributes.
type File struct {
	attrs vfs.FileAttributes
	data  []byte
}

// NewFile creates a file holding data with default regular-file mode.
func NewFile(data []byte) *File {
	attrs := vfs.NewFileAttributes(syscall.S_IFREG | 0o644)
	attrs.Size = uint64(len(data))

	return &File{attrs: attrs, data: data}
}

// Attrs returns the file's attributes.
func (f *File) Attrs() vfs.FileAttributes {
	return f.attrs
}

// Data returns the file's content.
func (f *File) Data() []byte {
	return f.data
}

// MemFS serves an inode.Table of in-memory files. Extended attributes
// are kept per inode, off to the side of the table, so directories can
// carry them too.
type MemFS struct {
	inodes  *inode.Table[*File]
	xattrs  map[vfs.Ino]map[string][]byte
	handles *vfs.HandleManager
}

// New creates an empty MemFS containing only the root directory.
func New() *MemFS {
	return &MemFS{
		inodes:  inode.NewTable[*File](),
		xattrs:  make(map[vfs.Ino]map[string][]byte),
		handles: vfs.NewHandleManager(),
	}
}

// Table exposes the underlying inode table for tree building.
func (m *MemFS) Table() *inode.Table[*File] {
	return m.inodes
}

// AddDir creates a directory under parent. ErrNoEntry if the parent is
// missing or not a directory.
func (m *MemFS) AddDir(parent vfs.Ino, name string) (vfs.Ino, error) {
	ino, ok := m.inodes.PushEntry(parent, name, inode.NewDir[*File]())
	if !ok {
		return 0, vfs.ErrNoEntry
	}
	return ino, nil
}

// AddFile creates a file under parent holding data.
func (m *MemFS) AddFile(parent vfs.Ino, name string, data []byte) (vfs.Ino, error) {
	ino, ok := m.inodes.PushEntry(parent, name, inode.NewFile(NewFile(data)))
	if !ok {
		return 0, vfs.ErrNoEntry
	}
	return ino, nil
}

// Lookup resolves name under the parent directory.
func (m *MemFS) Lookup(parent vfs.Ino, name string) (vfs.Lookup, error) {
	parentEntry, ok := m.inodes.Get(parent)
	if !ok {
		return vfs.Lookup{}, vfs.ErrNoEntry
	}
	dir, ok := parentEntry.Dir()
	if !ok {
		return vfs.Lookup{}, vfs.ErrNotDirectory
	}

	childIno, ok := dir.Get(name)
	if !ok {
		return vfs.Lookup{}, vfs.ErrNoEntry
	}
	child, ok := m.inodes.Get(childIno)
	if !ok {
		return vfs.Lookup{}, vfs.ErrNoEntry
	}

	return vfs.NewLookup(childIno, child.Attrs()), nil
}

// Getattr returns the attributes of ino.
func (m *MemFS) Getattr(ino vfs.Ino) (vfs.FileAttributes, error) {
	entry, ok := m.inodes.Get(ino)
	if !ok {
		return vfs.FileAttributes{}, vfs.ErrNoEntry
	}
	return entry.Attrs(), nil
}

// Setattr merges a sparse update into the entry's attributes.
func (m *MemFS) Setattr(ino vfs.Ino, update vfs.SetFileAttributes) (vfs.FileAttributes, error) {
	entry, ok := m.inodes.Get(ino)
	if !ok {
		return vfs.FileAttributes{}, vfs.ErrNoEntry
	}

	if dir, ok := entry.Dir(); ok {
		return dir.ApplyAttrs(update), nil
	}
	file, _ := entry.File()
	file.attrs = file.attrs.Apply(update)
	return file.attrs, nil
}

// Open issues a handle for a file inode.
func (m *MemFS) Open(ino vfs.Ino, flags uint32) (vfs.OpenResult, error) {
	entry, ok := m.inodes.Get(ino)
	if !ok {
		return vfs.OpenResult{}, vfs.ErrNoEntry
	}
	if entry.IsDir() {
		return vfs.OpenResult{}, vfs.ErrNotFile
	}

	return vfs.OpenResult{
		Handle:    m.handles.Allocate(ino, false, flags),
		KeepCache: true,
		Seekable:  true,
	}, nil
}

// OpenDir issues a handle for a directory inode.
func (m *MemFS) OpenDir(ino vfs.Ino, flags uint32) (vfs.OpenResult, error) {
	entry, ok := m.inodes.Get(ino)
	if !ok {
		return vfs.OpenResult{}, vfs.ErrNoEntry
	}
	if !entry.IsDir() {
		return vfs.OpenResult{}, vfs.ErrNotDirectory
	}

	return vfs.OpenResult{
		Handle:   m.handles.Allocate(ino, true, flags),
		Seekable: true,
		CacheDir: true,
	}, nil
}

// Setxattr sets one extended attribute, honoring the create/replace
// preference. Replacing a missing attribute is ErrNoEntry; creating an
// existing one is ErrInvalidFlags.
func (m *MemFS) Setxattr(ino vfs.Ino, name string, value []byte, flag vfs.XattrFlag) error {
	if _, ok := m.inodes.Get(ino); !ok {
		return vfs.ErrNoEntry
	}

	attrs := m.xattrs[ino]
	_, exists := attrs[name]

	switch flag {
	case vfs.XattrCreate:
		if exists {
			return vfs.ErrInvalidFlags
		}
	case vfs.XattrReplace:
		if !exists {
			return vfs.ErrNoEntry
		}
	}

	if attrs == nil {
		attrs = make(map[string][]byte)
		m.xattrs[ino] = attrs
	}
	attrs[name] = append([]byte(nil), value...)
	return nil
}

// Getxattr reads one extended attribute. Size 0 is a length query; a
// value longer than a nonzero size is ErrBufferOverflow, not a
// truncation.
func (m *MemFS) Getxattr(ino vfs.Ino, name string, size uint32) (vfs.XattrValue, error) {
	if _, ok := m.inodes.Get(ino); !ok {
		return vfs.XattrValue{}, vfs.ErrNoEntry
	}
	value, ok := m.xattrs[ino][name]
	if !ok {
		return vfs.XattrValue{}, vfs.ErrNoEntry
	}

	full := uint32(len(value))
	if size == 0 {
		return vfs.XattrValue{FullLen: full}, nil
	}
	if full > size {
		return vfs.XattrValue{}, vfs.ErrBufferOverflow
	}

	return vfs.XattrValue{Data: append([]byte(nil), value...), FullLen: full}, nil
}

// Listxattrs returns the nul-separated attribute name list, sorted so
// the listing is stable.
func (m *MemFS) Listxattrs(ino vfs.Ino, size uint32) (vfs.XattrValue, error) {
	if _, ok := m.inodes.Get(ino); !ok {
		return vfs.XattrValue{}, vfs.ErrNoEntry
	}

	names := make([]string, 0, len(m.xattrs[ino]))
	for name := range m.xattrs[ino] {
		names = append(names, name)
	}
	sort.Strings(names)

	var list []byte
	for _, name := range names {
		list = append(list, name...)
		list = append(list, 0)
	}

	full := uint32(len(list))
	if size == 0 {
		return vfs.XattrValue{FullLen: full}, nil
	}
	if full > size {
		return vfs.XattrValue{}, vfs.ErrBufferOverflow
	}

	return vfs.XattrValue{Data: list, FullLen: full}, nil
}

// Readdir lists a directory from the given cursor: "." at offset 1,
// ".." at offset 2, then children from offset 3 in insertion order.
// Entries at or below the cursor are omitted.
func (m *MemFS) Readdir(dir vfs.Ino, offset uint64) ([]vfs.DirEntry, error) {
	dirEntry, ok := m.inodes.Get(dir)
	if !ok {
		return nil, vfs.ErrNoEntry
	}
	children, ok := dirEntry.Dir()
	if !ok {
		return nil, vfs.ErrNotDirectory
	}

	parent, ok := dirEntry.Parent()
	if !ok {
		// The root's ".." points back at the root.
		parent = vfs.RootIno
	}

	entries := make([]vfs.DirEntry, 0, children.Len()+2)
	entries = append(entries,
		vfs.DirEntry{Name: ".", Ino: dir, Type: vfs.FileTypeDirectory, Offset: 1},
		vfs.DirEntry{Name: "..", Ino: parent, Type: vfs.FileTypeDirectory, Offset: 2},
	)

	next := uint64(3)
	for name, childIno := range children.Children() {
		typ := vfs.FileTypeUnknown
		if child, ok := m.inodes.Get(childIno); ok {
			typ = child.FileType()
		}
		entries = append(entries, vfs.DirEntry{
			Name:   name,
			Ino:    childIno,
			Type:   typ,
			Offset: next,
		})
		next++
	}

	// Resume after the cursor, not at it.
	resumed := entries[:0]
	for _, e := range entries {
		if e.Offset > offset {
			resumed = append(resumed, e)
		}
	}
	return resumed, nil
}

// Read returns up to size bytes at offset. Past end of data the result
// is short or empty, never an error.
func (m *MemFS) Read(ino vfs.Ino, offset uint64, size uint32) ([]byte, error) {
	entry, ok := m.inodes.Get(ino)
	if !ok {
		return nil, vfs.ErrNoEntry
	}
	file, ok := entry.File()
	if !ok {
		return nil, vfs.ErrNotFile
	}

	if offset >= uint64(len(file.data)) {
		return nil, nil
	}

	end := offset + uint64(size)
	if end > uint64(len(file.data)) {
		end = uint64(len(file.data))
	}
	return file.data[offset:end], nil
}

// Write copies size bytes from src at offset, growing the backing
// slice first.
func (m *MemFS) Write(ino vfs.Ino, offset uint64, size uint32, src io.Reader) (uint32, error) {
	entry, ok := m.inodes.Get(ino)
	if !ok {
		return 0, vfs.ErrNoEntry
	}
	file, ok := entry.File()
	if !ok {
		return 0, vfs.ErrNotFile
	}

	end := offset + uint64(size)
	if end > uint64(len(file.data)) {
		grown := make([]byte, end)
		copy(grown, file.data)
		file.data = grown
	}

	if _, err := io.ReadFull(src, file.data[offset:end]); err != nil {
		return 0, err
	}

	file.attrs.Size = uint64(len(file.data))
	return size, nil
}

var _ vfs.Filesystem = (*MemFS)(nil)
