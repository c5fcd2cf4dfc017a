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

// Package billyfs serves a go-billy filesystem through the Filesystem
// capability interface. Billy speaks paths, so the bridge keeps a
// path<->inode index, minting monotonically increasing inode numbers
// the first time each path is seen. Extended attributes are not a
// billy concept and stay at their not-implemented defaults.
package billyfs

import (
	"errors"
	"io"
	"os"
	"sort"
	"syscall"
	"time"

	billy "github.com/go-git/go-billy/v5"

	"fusekit/internal/vfs"
)

// BillyFS adapts a billy.Filesystem to vfs.Filesystem.
type BillyFS struct {
	vfs.NotImplementedFS

	fs      billy.Filesystem
	handles *vfs.HandleManager

	inos  map[string]vfs.Ino
	paths map[vfs.Ino]string
	next  vfs.Ino

	// Root attributes are synthesized rather than stat'ed: billy
	// backends disagree on whether the root itself is stat-able.
	mounted time.Time
}

// New wraps a billy filesystem.
func New(fs billy.Filesystem) *BillyFS {
	b := &BillyFS{
		fs:      fs,
		handles: vfs.NewHandleManager(),
		inos:    make(map[string]vfs.Ino),
		paths:   make(map[vfs.Ino]string),
		next:    vfs.RootIno + 1,
		mounted: time.Now(),
	}
	b.inos["/"] = vfs.RootIno
	b.paths[vfs.RootIno] = "/"
	return b
}

// inoFor returns the inode number for a path, minting the next one on
// first sight. Numbers are never reused; a path keeps its inode for the
// bridge's lifetime.
func (b *BillyFS) inoFor(path string) vfs.Ino {
	if ino, ok := b.inos[path]; ok {
		return ino
	}
	ino := b.next
	b.next++
	b.inos[path] = ino
	b.paths[ino] = path
	return ino
}

func (b *BillyFS) pathOf(ino vfs.Ino) (string, error) {
	path, ok := b.paths[ino]
	if !ok {
		return "", vfs.ErrNoEntry
	}
	return path, nil
}

func (b *BillyFS) rootAttrs() vfs.FileAttributes {
	attrs := vfs.NewFileAttributes(syscall.S_IFDIR | 0o755)
	attrs.Mtime = b.mounted
	attrs.Ctime = b.mounted
	return attrs
}

// attrsFrom translates a stat result into our attribute model.
func attrsFrom(info os.FileInfo) vfs.FileAttributes {
	mode := uint32(info.Mode().Perm())
	if info.IsDir() {
		mode |= syscall.S_IFDIR
	} else {
		mode |= syscall.S_IFREG
	}

	attrs := vfs.NewFileAttributes(mode)
	attrs.Size = uint64(info.Size())
	attrs.Mtime = info.ModTime()
	attrs.Ctime = info.ModTime()
	return attrs
}

func mapBillyErr(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return vfs.ErrNoEntry
	}
	return err
}

// Lookup resolves name under the parent directory.
func (b *BillyFS) Lookup(parent vfs.Ino, name string) (vfs.Lookup, error) {
	parentPath, err := b.pathOf(parent)
	if err != nil {
		return vfs.Lookup{}, err
	}
	if parent != vfs.RootIno {
		info, err := b.fs.Stat(parentPath)
		if err != nil {
			return vfs.Lookup{}, mapBillyErr(err)
		}
		if !info.IsDir() {
			return vfs.Lookup{}, vfs.ErrNotDirectory
		}
	}

	childPath := b.fs.Join(parentPath, name)
	info, err := b.fs.Stat(childPath)
	if err != nil {
		return vfs.Lookup{}, mapBillyErr(err)
	}

	return vfs.NewLookup(b.inoFor(childPath), attrsFrom(info)), nil
}

// Getattr stats the path behind ino.
func (b *BillyFS) Getattr(ino vfs.Ino) (vfs.FileAttributes, error) {
	if ino == vfs.RootIno {
		return b.rootAttrs(), nil
	}

	path, err := b.pathOf(ino)
	if err != nil {
		return vfs.FileAttributes{}, err
	}
	info, err := b.fs.Stat(path)
	if err != nil {
		return vfs.FileAttributes{}, mapBillyErr(err)
	}
	return attrsFrom(info), nil
}

// Setattr applies what billy can express: size through Truncate, mode
// and times through the optional Change capability. Updates billy
// cannot express at all fail with ErrNotImplemented.
func (b *BillyFS) Setattr(ino vfs.Ino, update vfs.SetFileAttributes) (vfs.FileAttributes, error) {
	path, err := b.pathOf(ino)
	if err != nil {
		return vfs.FileAttributes{}, err
	}

	if update.Size != nil {
		f, err := b.fs.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return vfs.FileAttributes{}, mapBillyErr(err)
		}
		truncErr := f.Truncate(int64(*update.Size))
		f.Close()
		if truncErr != nil {
			return vfs.FileAttributes{}, truncErr
		}
	}

	if update.Mode != nil || update.UID != nil || update.GID != nil ||
		update.Atime != nil || update.Mtime != nil {
		ch, ok := b.fs.(billy.Change)
		if !ok {
			return vfs.FileAttributes{}, vfs.ErrNotImplemented
		}

		if update.Mode != nil {
			if err := ch.Chmod(path, os.FileMode(*update.Mode).Perm()); err != nil {
				return vfs.FileAttributes{}, mapBillyErr(err)
			}
		}
		if update.UID != nil || update.GID != nil {
			uid, gid := -1, -1
			if update.UID != nil {
				uid = int(*update.UID)
			}
			if update.GID != nil {
				gid = int(*update.GID)
			}
			if err := ch.Chown(path, uid, gid); err != nil {
				return vfs.FileAttributes{}, mapBillyErr(err)
			}
		}
		if update.Atime != nil || update.Mtime != nil {
			info, err := b.fs.Stat(path)
			if err != nil {
				return vfs.FileAttributes{}, mapBillyErr(err)
			}
			atime, mtime := info.ModTime(), info.ModTime()
			if update.Atime != nil {
				atime = *update.Atime
			}
			if update.Mtime != nil {
				mtime = *update.Mtime
			}
			if err := ch.Chtimes(path, atime, mtime); err != nil {
				return vfs.FileAttributes{}, mapBillyErr(err)
			}
		}
	}

	return b.Getattr(ino)
}

// Open issues a handle for a file inode.
func (b *BillyFS) Open(ino vfs.Ino, flags uint32) (vfs.OpenResult, error) {
	path, err := b.pathOf(ino)
	if err != nil {
		return vfs.OpenResult{}, err
	}
	info, err := b.fs.Stat(path)
	if err != nil {
		return vfs.OpenResult{}, mapBillyErr(err)
	}
	if info.IsDir() {
		return vfs.OpenResult{}, vfs.ErrNotFile
	}

	return vfs.OpenResult{
		Handle:   b.handles.Allocate(ino, false, flags),
		Seekable: true,
	}, nil
}

// OpenDir issues a handle for a directory inode.
func (b *BillyFS) OpenDir(ino vfs.Ino, flags uint32) (vfs.OpenResult, error) {
	if ino != vfs.RootIno {
		path, err := b.pathOf(ino)
		if err != nil {
			return vfs.OpenResult{}, err
		}
		info, err := b.fs.Stat(path)
		if err != nil {
			return vfs.OpenResult{}, mapBillyErr(err)
		}
		if !info.IsDir() {
			return vfs.OpenResult{}, vfs.ErrNotDirectory
		}
	}

	return vfs.OpenResult{
		Handle:   b.handles.Allocate(ino, true, flags),
		Seekable: true,
	}, nil
}

// Readdir lists a directory, dot entries first, then children sorted
// by name so offsets stay stable between calls.
func (b *BillyFS) Readdir(dir vfs.Ino, offset uint64) ([]vfs.DirEntry, error) {
	path, err := b.pathOf(dir)
	if err != nil {
		return nil, err
	}

	infos, err := b.fs.ReadDir(path)
	if err != nil {
		return nil, mapBillyErr(err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	parentIno := vfs.RootIno
	if dir != vfs.RootIno {
		parentIno = b.inoFor(b.fs.Join(path, ".."))
	}

	entries := make([]vfs.DirEntry, 0, len(infos)+2)
	entries = append(entries,
		vfs.DirEntry{Name: ".", Ino: dir, Type: vfs.FileTypeDirectory, Offset: 1},
		vfs.DirEntry{Name: "..", Ino: parentIno, Type: vfs.FileTypeDirectory, Offset: 2},
	)

	next := uint64(3)
	for _, info := range infos {
		typ := vfs.FileTypeRegular
		if info.IsDir() {
			typ = vfs.FileTypeDirectory
		}
		entries = append(entries, vfs.DirEntry{
			Name:   info.Name(),
			Ino:    b.inoFor(b.fs.Join(path, info.Name())),
			Type:   typ,
			Offset: next,
		})
		next++
	}

	resumed := entries[:0]
	for _, e := range entries {
		if e.Offset > offset {
			resumed = append(resumed, e)
		}
	}
	return resumed, nil
}

// Read returns up to size bytes at offset, short or empty past end of
// file.
func (b *BillyFS) Read(ino vfs.Ino, offset uint64, size uint32) ([]byte, error) {
	path, err := b.pathOf(ino)
	if err != nil {
		return nil, err
	}

	f, err := b.fs.Open(path)
	if err != nil {
		return nil, mapBillyErr(err)
	}
	defer f.Close()

	buf := make([]byte, size)
	n, err := f.ReadAt(buf, int64(offset))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// Write copies size bytes from src into the file at offset. Seeking
// past the current end grows the file, per billy semantics.
func (b *BillyFS) Write(ino vfs.Ino, offset uint64, size uint32, src io.Reader) (uint32, error) {
	path, err := b.pathOf(ino)
	if err != nil {
		return 0, err
	}

	f, err := b.fs.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return 0, mapBillyErr(err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.CopyN(f, src, int64(size))
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	return uint32(n), nil
}

var _ vfs.Filesystem = (*BillyFS)(nil)
