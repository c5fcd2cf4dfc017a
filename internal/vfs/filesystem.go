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

// Package vfs defines the contract between the request dispatch loop
// and a concrete filesystem backend: the attribute model, the error
// taxonomy, and the Filesystem capability interface.
package vfs

import "io"

// Filesystem is the capability interface a backend implements. A
// backend only needs to override the operations it supports: embed
// NotImplementedFS to inherit "not implemented" defaults for the rest,
// and the dispatch loop translates those into ENOSYS replies.
//
// A Filesystem is driven by exactly one dispatch loop at a time, one
// request at a time, so implementations need no internal locking unless
// they are shared beyond that loop.
type Filesystem interface {
	// Lookup resolves name within the parent directory. ErrNoEntry if
	// the name is absent, ErrNotDirectory if parent is not a directory.
	Lookup(parent Ino, name string) (Lookup, error)

	// Getattr returns the full attributes of an inode.
	Getattr(ino Ino) (FileAttributes, error)

	// Setattr applies a sparse update and returns the resulting full
	// attribute set. Merge semantics are FileAttributes.Apply.
	Setattr(ino Ino, update SetFileAttributes) (FileAttributes, error)

	// Open issues a handle for a file inode.
	Open(ino Ino, flags uint32) (OpenResult, error)

	// OpenDir issues a handle for a directory inode.
	OpenDir(ino Ino, flags uint32) (OpenResult, error)

	// Setxattr sets one extended attribute. flag is the already-decoded
	// create/replace preference.
	Setxattr(ino Ino, name string, value []byte, flag XattrFlag) error

	// Getxattr reads one extended attribute. size 0 means the caller
	// wants only the true length; otherwise at most size bytes may be
	// returned, and a value longer than size is ErrBufferOverflow.
	Getxattr(ino Ino, name string, size uint32) (XattrValue, error)

	// Listxattrs returns the nul-separated attribute name list, with
	// the same size-query and overflow conventions as Getxattr.
	Listxattrs(ino Ino, size uint32) (XattrValue, error)

	// Readdir enumerates a directory from the given cursor. Entries
	// must include "." (offset 1) and ".." (offset 2) ahead of real
	// children (offsets from 3), and must omit entries at or below the
	// cursor. Getting either wrong can wedge the kernel in a readdir
	// loop.
	Readdir(dir Ino, offset uint64) ([]DirEntry, error)

	// Read returns up to size bytes starting at offset. Reading past
	// end of data yields a short or empty slice, never an error.
	Read(ino Ino, offset uint64, size uint32) ([]byte, error)

	// Write copies size bytes from src into the file at offset, growing
	// the backing storage first, and reports the bytes written.
	Write(ino Ino, offset uint64, size uint32, src io.Reader) (uint32, error)
}

// NotImplementedFS returns ErrNotImplemented from every operation.
// Backends embed it so they only implement what they support.
type NotImplementedFS struct{}

var _ Filesystem = NotImplementedFS{}

func (NotImplementedFS) Lookup(parent Ino, name string) (Lookup, error) {
	return Lookup{}, ErrNotImplemented
}

func (NotImplementedFS) Getattr(ino Ino) (FileAttributes, error) {
	return FileAttributes{}, ErrNotImplemented
}

func (NotImplementedFS) Setattr(ino Ino, update SetFileAttributes) (FileAttributes, error) {
	return FileAttributes{}, ErrNotImplemented
}

func (NotImplementedFS) Open(ino Ino, flags uint32) (OpenResult, error) {
	return OpenResult{}, ErrNotImplemented
}

func (NotImplementedFS) OpenDir(ino Ino, flags uint32) (OpenResult, error) {
	return OpenResult{}, ErrNotImplemented
}

func (NotImplementedFS) Setxattr(ino Ino, name string, value []byte, flag XattrFlag) error {
	return ErrNotImplemented
}

func (NotImplementedFS) Getxattr(ino Ino, name string, size uint32) (XattrValue, error) {
	return XattrValue{}, ErrNotImplemented
}

func (NotImplementedFS) Listxattrs(ino Ino, size uint32) (XattrValue, error) {
	return XattrValue{}, ErrNotImplemented
}

func (NotImplementedFS) Readdir(dir Ino, offset uint64) ([]DirEntry, error) {
	return nil, ErrNotImplemented
}

func (NotImplementedFS) Read(ino Ino, offset uint64, size uint32) ([]byte, error) {
	return nil, ErrNotImplemented
}

func (NotImplementedFS) Write(ino Ino, offset uint64, size uint32, src io.Reader) (uint32, error) {
	return 0, ErrNotImplemented
}
