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

// Package transport is the seam to the kernel transport. fusekit never
// speaks the wire protocol itself: a Mounter hands the dispatch loop a
// Session of already-decoded operations, and the loop answers each one
// through its Request. The wire byte layout lives entirely on the other
// side of these interfaces.
package transport

import (
	"io"
	"syscall"
	"time"
)

// MountConfig carries the kernel negotiation knobs a transport needs at
// mount time.
type MountConfig struct {
	MaxWrite     uint32 `yaml:"max-write"`
	MaxReadahead uint32 `yaml:"max-readahead"`
	AllowOther   bool   `yaml:"allow-other"`
	FSName       string `yaml:"fs-name"`
}

// Mounter mounts a filesystem at a path and returns the request stream.
type Mounter interface {
	Mount(mountpoint string, cfg MountConfig) (Session, error)
}

// Session is one mounted request stream. Next blocks for the next
// decoded operation; it returns io.EOF when the kernel has unmounted
// and no more requests will arrive. Any other error is fatal to the
// session.
type Session interface {
	Next() (Request, error)
	Close() error
}

// Request is one in-flight operation. Exactly one of Reply or ReplyErr
// must be called per request.
type Request interface {
	Op() Op
	Reply(reply Reply) error
	ReplyErr(errno syscall.Errno) error
}

// Op is a decoded wire operation. The concrete types below are the op
// families the dispatch loop understands; everything else arrives as
// UnknownOp.
type Op interface {
	isOp()
}

// LookupOp resolves Name within the directory Parent.
type LookupOp struct {
	Parent uint64
	Name   string
}

// GetattrOp fetches the attributes of Ino.
type GetattrOp struct {
	Ino uint64
}

// SetattrOp applies a partial attribute update. Nil fields were not set
// in the request. AtimeNow/MtimeNow flag the "set to current time"
// variants, in which case the corresponding time field is nil.
type SetattrOp struct {
	Ino   uint64
	Mode  *uint32
	Size  *uint64
	UID   *uint32
	GID   *uint32
	Atime *time.Time
	Mtime *time.Time
	Ctime *time.Time

	AtimeNow bool
	MtimeNow bool
}

// OpenOp opens a file inode.
type OpenOp struct {
	Ino   uint64
	Flags uint32
}

// OpendirOp opens a directory inode.
type OpendirOp struct {
	Ino   uint64
	Flags uint32
}

// SetxattrOp sets one extended attribute. Flags is the raw create/
// replace flag word, not yet validated.
type SetxattrOp struct {
	Ino   uint64
	Name  string
	Value []byte
	Flags uint32
}

// GetxattrOp reads one extended attribute. Size 0 is a length query.
type GetxattrOp struct {
	Ino  uint64
	Name string
	Size uint32
}

// ListxattrOp lists extended attribute names. Size 0 is a length query.
type ListxattrOp struct {
	Ino  uint64
	Size uint32
}

// ReaddirOp reads a directory from Offset into a reply buffer of at
// most Size bytes. Plus marks readdirplus mode.
type ReaddirOp struct {
	Ino    uint64
	Offset uint64
	Size   uint32
	Plus   bool
}

// ReadOp reads up to Size bytes at Offset.
type ReadOp struct {
	Ino    uint64
	Offset uint64
	Size   uint32
}

// WriteOp writes Size bytes at Offset. Data streams the payload from
// the transport's receive buffer.
type WriteOp struct {
	Ino    uint64
	Offset uint64
	Size   uint32
	Data   io.Reader
}

// UnknownOp is an op family the dispatch layer has no handler for.
type UnknownOp struct {
	Code uint32
}

func (LookupOp) isOp()    {}
func (GetattrOp) isOp()   {}
func (SetattrOp) isOp()   {}
func (OpenOp) isOp()      {}
func (OpendirOp) isOp()   {}
func (SetxattrOp) isOp()  {}
func (GetxattrOp) isOp()  {}
func (ListxattrOp) isOp() {}
func (ReaddirOp) isOp()   {}
func (ReadOp) isOp()      {}
func (WriteOp) isOp()     {}
func (UnknownOp) isOp()   {}

// Reply is a typed success reply. The concrete shapes mirror the wire
// reply families; the transport encodes them.
type Reply interface {
	isReply()
}

// FileAttr is the attribute block embedded in entry and attr replies.
type FileAttr struct {
	Ino     uint64
	Size    uint64
	Blocks  uint64
	Mode    uint32
	Nlink   uint32
	UID     uint32
	GID     uint32
	Rdev    uint32
	Blksize uint32
	Atime   time.Time
	Mtime   time.Time
	Ctime   time.Time
}

// EntryOut answers a lookup.
type EntryOut struct {
	Ino        uint64
	Generation uint64
	AttrValid  time.Duration
	EntryValid time.Duration
	Attr       FileAttr
}

// AttrOut answers getattr and setattr.
type AttrOut struct {
	TTL  time.Duration
	Attr FileAttr
}

// OpenOut answers open and opendir.
type OpenOut struct {
	Handle      uint64
	DirectIO    bool
	KeepCache   bool
	NonSeekable bool
	CacheDir    bool
}

// WriteOut reports bytes written.
type WriteOut struct {
	Size uint32
}

// XattrSizeOut answers a getxattr/listxattr length query.
type XattrSizeOut struct {
	Size uint32
}

// Data is a raw byte reply, used for read and non-empty xattr results.
type Data []byte

// Empty acknowledges an operation with no payload, such as setxattr.
type Empty struct{}

func (EntryOut) isReply()     {}
func (AttrOut) isReply()      {}
func (OpenOut) isReply()      {}
func (WriteOut) isReply()     {}
func (XattrSizeOut) isReply() {}
func (Data) isReply()         {}
func (Empty) isReply()        {}
func (*DirBuffer) isReply()   {}
