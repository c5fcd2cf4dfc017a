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

package transport

// direntHeaderSize is the fixed per-entry overhead of a wire dirent
// (ino, offset, namelen, type), before the name bytes.
const direntHeaderSize = 24

// DirEntryOut is one packed readdir entry.
type DirEntryOut struct {
	Name   string
	Ino    uint64
	Type   uint32
	Offset uint64
}

// DirBuffer packs readdir entries against the byte budget the kernel
// requested. Each entry is charged its dirent header plus the name,
// rounded up to 8 bytes, matching how the transport will lay it out.
type DirBuffer struct {
	max     int
	used    int
	entries []DirEntryOut
}

// NewDirBuffer creates a buffer with the given byte budget.
func NewDirBuffer(size uint32) *DirBuffer {
	return &DirBuffer{max: int(size)}
}

// Add appends one entry. It returns false, without adding, once the
// entry would not fit; the caller stops packing there and the kernel
// re-reads from the last delivered offset.
func (b *DirBuffer) Add(name string, ino uint64, typ uint32, offset uint64) bool {
	cost := direntAlign(direntHeaderSize + len(name))
	if b.used+cost > b.max {
		return false
	}

	b.used += cost
	b.entries = append(b.entries, DirEntryOut{
		Name:   name,
		Ino:    ino,
		Type:   typ,
		Offset: offset,
	})
	return true
}

// Entries returns the packed entries in order.
func (b *DirBuffer) Entries() []DirEntryOut {
	return b.entries
}

// Used returns the byte budget consumed so far.
func (b *DirBuffer) Used() int {
	return b.used
}

func direntAlign(n int) int {
	return (n + 7) &^ 7
}
