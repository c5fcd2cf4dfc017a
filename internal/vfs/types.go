package vfs

import (
	"syscall"
	"time"
)

// Ino is a 64-bit inode number. Ino values are opaque to this layer;
// backends mint them however they like, except that RootIno always
// names the filesystem root.
type Ino uint64

// RootIno is the reserved root inode number. The kernel may reference
// it without the backend ever having returned it.
const RootIno Ino = 1

// HandleID identifies one open file or directory. Handles are a
// namespace separate from inode numbers.
type HandleID uint64

// FileType is the dirent type tag for a namespace entry.
type FileType int

const (
	// FileTypeUnknown is reported when the backend cannot classify an entry
	FileTypeUnknown FileType = iota
	// FileTypeRegular is a regular file
	FileTypeRegular
	// FileTypeDirectory is a directory
	FileTypeDirectory
	// FileTypeSymlink is a symbolic link
	FileTypeSymlink
	// FileTypeFIFO is a named pipe
	FileTypeFIFO
	// FileTypeSocket is a unix socket
	FileTypeSocket
	// FileTypeChar is a character device
	FileTypeChar
	// FileTypeBlock is a block device
	FileTypeBlock
)

// DirentType returns the d_type value used in readdir replies.
func (t FileType) DirentType() uint32 {
	switch t {
	case FileTypeRegular:
		return syscall.DT_REG
	case FileTypeDirectory:
		return syscall.DT_DIR
	case FileTypeSymlink:
		return syscall.DT_LNK
	case FileTypeFIFO:
		return syscall.DT_FIFO
	case FileTypeSocket:
		return syscall.DT_SOCK
	case FileTypeChar:
		return syscall.DT_CHR
	case FileTypeBlock:
		return syscall.DT_BLK
	default:
		return syscall.DT_UNKNOWN
	}
}

// Lookup is the result of resolving a name within a directory.
type Lookup struct {
	Ino        Ino
	Attributes FileAttributes

	// Generation disambiguates reused inode numbers for NFS export.
	// Zero means the backend does not track generations.
	Generation uint64

	// How long the kernel may cache the attributes and the entry itself.
	AttrValid  time.Duration
	EntryValid time.Duration
}

// NewLookup bundles an inode and its attributes with the protocol
// default cache timeouts.
func NewLookup(ino Ino, attrs FileAttributes) Lookup {
	return Lookup{
		Ino:        ino,
		Attributes: attrs,
		AttrValid:  DefaultAttrTTL,
		EntryValid: DefaultAttrTTL,
	}
}

// DirEntry is one readdir result. Offset is the opaque cursor the
// kernel hands back to resume enumeration; it must be strictly
// increasing within one directory listing.
type DirEntry struct {
	Name   string
	Ino    Ino
	Type   FileType
	Offset uint64
}

// OpenResult is the handle plus caching hints returned by Open and
// OpenDir. CacheDir only has meaning for directories.
type OpenResult struct {
	Handle    HandleID
	DirectIO  bool
	KeepCache bool
	Seekable  bool
	CacheDir  bool
}

// XattrValue is an extended attribute read result. When the caller
// asked for the size only (requested length 0), Data is empty and
// FullLen carries the true length.
type XattrValue struct {
	Data    []byte
	FullLen uint32
}

// XattrFlag is the decoded setxattr create/replace preference.
type XattrFlag int

const (
	// XattrCreate fails if the attribute already exists
	XattrCreate XattrFlag = iota + 1
	// XattrReplace fails if the attribute does not exist
	XattrReplace
)

// Raw setxattr flag bits, as defined by the platform xattr interface.
const (
	xattrCreateBit  = 0x1
	xattrReplaceBit = 0x2
)

// DecodeXattrFlags decodes the raw setxattr flag word. Exactly one of
// the create/replace bits must be set; both or neither is rejected as
// ErrInvalidFlags.
//
// Note: some kernels send neither bit to mean "no preference". We keep
// rejecting that until the semantics are pinned down; see DESIGN.md.
func DecodeXattrFlags(raw uint32) (XattrFlag, error) {
	switch raw {
	case xattrCreateBit:
		return XattrCreate, nil
	case xattrReplaceBit:
		return XattrReplace, nil
	default:
		return 0, ErrInvalidFlags
	}
}
