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

import (
	"io"

	ignore "github.com/sabhiram/go-gitignore"
)

// FilterFS wraps a Filesystem and hides entries whose names match
// gitignore-style rules. Hidden names disappear from Readdir and fail
// Lookup with ErrNoEntry; every other operation passes through
// untouched. The dot entries are never filtered.
type FilterFS struct {
	inner   Filesystem
	matcher *ignore.GitIgnore
}

// NewFilterFS builds a FilterFS from gitignore-style pattern lines.
func NewFilterFS(inner Filesystem, patterns []string) *FilterFS {
	return &FilterFS{
		inner:   inner,
		matcher: ignore.CompileIgnoreLines(patterns...),
	}
}

func (f *FilterFS) hidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return f.matcher.MatchesPath(name)
}

// Lookup hides matching names; everything else delegates.
func (f *FilterFS) Lookup(parent Ino, name string) (Lookup, error) {
	if f.hidden(name) {
		return Lookup{}, ErrNoEntry
	}
	return f.inner.Lookup(parent, name)
}

// Readdir drops matching entries from the listing. Offsets of the
// surviving entries are preserved, so cursors stay valid; gaps in the
// offset sequence are fine.
func (f *FilterFS) Readdir(dir Ino, offset uint64) ([]DirEntry, error) {
	entries, err := f.inner.Readdir(dir, offset)
	if err != nil {
		return nil, err
	}

	kept := entries[:0]
	for _, e := range entries {
		if f.hidden(e.Name) {
			continue
		}
		kept = append(kept, e)
	}
	return kept, nil
}

func (f *FilterFS) Getattr(ino Ino) (FileAttributes, error) {
	return f.inner.Getattr(ino)
}

func (f *FilterFS) Setattr(ino Ino, update SetFileAttributes) (FileAttributes, error) {
	return f.inner.Setattr(ino, update)
}

func (f *FilterFS) Open(ino Ino, flags uint32) (OpenResult, error) {
	return f.inner.Open(ino, flags)
}

func (f *FilterFS) OpenDir(ino Ino, flags uint32) (OpenResult, error) {
	return f.inner.OpenDir(ino, flags)
}

func (f *FilterFS) Setxattr(ino Ino, name string, value []byte, flag XattrFlag) error {
	return f.inner.Setxattr(ino, name, value, flag)
}

func (f *FilterFS) Getxattr(ino Ino, name string, size uint32) (XattrValue, error) {
	return f.inner.Getxattr(ino, name, size)
}

func (f *FilterFS) Listxattrs(ino Ino, size uint32) (XattrValue, error) {
	return f.inner.Listxattrs(ino, size)
}

func (f *FilterFS) Read(ino Ino, offset uint64, size uint32) ([]byte, error) {
	return f.inner.Read(ino, offset, size)
}

func (f *FilterFS) Write(ino Ino, offset uint64, size uint32, src io.Reader) (uint32, error) {
	return f.inner.Write(ino, offset, size, src)
}

var _ Filesystem = (*FilterFS)(nil)
