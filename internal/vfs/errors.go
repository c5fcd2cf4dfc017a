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
	"errors"
	"syscall"
)

// Filesystem error taxonomy. Every error a backend returns from a
// Filesystem method is expected to wrap one of these; anything else is
// reported to the kernel as EIO.
var (
	ErrNoEntry        = errors.New("no such file or directory")
	ErrNotFile        = errors.New("not a file")
	ErrNotDirectory   = errors.New("not a directory")
	ErrInvalidFlags   = errors.New("invalid flags")
	ErrBufferOverflow = errors.New("value larger than requested buffer")
	ErrNotImplemented = errors.New("function not implemented")
)

// Errno maps a filesystem error to the errno sent at the transport boundary.
func Errno(err error) syscall.Errno {
	switch {
	case errors.Is(err, ErrNoEntry):
		return syscall.ENOENT
	case errors.Is(err, ErrNotFile):
		return syscall.EINVAL
	case errors.Is(err, ErrNotDirectory):
		return syscall.ENOTDIR
	case errors.Is(err, ErrInvalidFlags):
		return syscall.EINVAL
	case errors.Is(err, ErrBufferOverflow):
		return syscall.ERANGE
	case errors.Is(err, ErrNotImplemented):
		return syscall.ENOSYS
	default:
		return syscall.EIO
	}
}
