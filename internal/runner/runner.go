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

// Package runner drives one mounted namespace: a blocking
// receive/dispatch/reply loop that translates decoded transport
// operations into Filesystem calls and the results back into typed
// replies or errnos.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"fusekit/internal/transport"
	"fusekit/internal/util"
	"fusekit/internal/vfs"
)

// Runner owns a mountpoint and the Filesystem serving it. The loop
// processes exactly one request at a time and answers it before pulling
// the next, so the backend sees strictly sequential access; filesystem
// errors turn into error replies and keep the loop alive, while
// transport errors end it.
type Runner struct {
	mountpoint string
	fs         vfs.Filesystem
	mounter    transport.Mounter
	cfg        transport.MountConfig

	// sessionID tags log lines; one Runner is one mount session.
	sessionID string

	lock *flock.Flock
}

// New creates a Runner serving fs at mountpoint through the given
// transport.
func New(fs vfs.Filesystem, mountpoint string, mounter transport.Mounter) *Runner {
	return &Runner{
		mountpoint: mountpoint,
		fs:         fs,
		mounter:    mounter,
		sessionID:  uuid.New().String(),
	}
}

// SetMountConfig overrides the kernel negotiation knobs passed to the
// transport at mount time.
func (r *Runner) SetMountConfig(cfg transport.MountConfig) {
	r.cfg = cfg
}

// Mountpoint returns the path this Runner serves.
func (r *Runner) Mountpoint() string {
	return r.mountpoint
}

// RunBlock mounts and runs the dispatch loop on the calling goroutine
// until the transport closes (nil) or fails (error). The Filesystem is
// exclusively the loop's for the duration.
func (r *Runner) RunBlock() error {
	ctx := context.Background()

	// One Runner per mountpoint. The lock file lives next to the
	// mountpoint, not inside it.
	r.lock = flock.New(r.mountpoint + ".lock")
	locked, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock mountpoint: %w", err)
	}
	if !locked {
		return fmt.Errorf("mountpoint %s is already being served", r.mountpoint)
	}
	defer r.lock.Unlock()

	sess, err := util.RetryWithResult(ctx, func() (transport.Session, error) {
		return r.mounter.Mount(r.mountpoint, r.cfg)
	}, util.MountRetryOptions(ctx)...)
	if err != nil {
		return fmt.Errorf("mount %s: %w", r.mountpoint, err)
	}
	defer sess.Close()

	log.Infof("[Runner] session %s: mounted at %s", r.sessionID, r.mountpoint)

	for {
		req, err := sess.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Infof("[Runner] session %s: transport closed", r.sessionID)
				return nil
			}
			return fmt.Errorf("transport receive: %w", err)
		}

		if err := r.dispatch(req); err != nil {
			return err
		}
	}
}

// Run starts RunBlock on its own goroutine. The returned channel
// yields the terminal result once the loop ends; the Runner itself
// stays with the caller.
func (r *Runner) Run() <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- r.RunBlock()
	}()
	return done
}

// dispatch answers exactly one request. A non-nil return is a
// transport-level failure and aborts the loop.
func (r *Runner) dispatch(req transport.Request) error {
	switch op := req.Op().(type) {
	case transport.LookupOp:
		return r.handleLookup(req, op)
	case transport.GetattrOp:
		return r.handleGetattr(req, op)
	case transport.SetattrOp:
		return r.handleSetattr(req, op)
	case transport.OpenOp:
		return r.handleOpen(req, op)
	case transport.OpendirOp:
		return r.handleOpendir(req, op)
	case transport.SetxattrOp:
		return r.handleSetxattr(req, op)
	case transport.GetxattrOp:
		return r.handleGetxattr(req, op)
	case transport.ListxattrOp:
		return r.handleListxattr(req, op)
	case transport.ReaddirOp:
		return r.handleReaddir(req, op)
	case transport.ReadOp:
		return r.handleRead(req, op)
	case transport.WriteOp:
		return r.handleWrite(req, op)
	default:
		log.Errorf("[Runner] unimplemented operation: %#v", op)
		return req.ReplyErr(vfs.Errno(vfs.ErrNotImplemented))
	}
}

func (r *Runner) handleLookup(req transport.Request, op transport.LookupOp) error {
	obj, err := r.fs.Lookup(vfs.Ino(op.Parent), op.Name)
	if err != nil {
		log.Warnf("[Runner] lookup error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	return req.Reply(transport.EntryOut{
		Ino:        uint64(obj.Ino),
		Generation: obj.Generation,
		AttrValid:  obj.AttrValid,
		EntryValid: obj.EntryValid,
		Attr:       copyFileAttr(obj.Attributes, obj.Ino),
	})
}

func (r *Runner) handleGetattr(req transport.Request, op transport.GetattrOp) error {
	attrs, err := r.fs.Getattr(vfs.Ino(op.Ino))
	if err != nil {
		log.Warnf("[Runner] getattr error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	return req.Reply(transport.AttrOut{
		TTL:  attrs.TTL,
		Attr: copyFileAttr(attrs, vfs.Ino(op.Ino)),
	})
}

func (r *Runner) handleSetattr(req transport.Request, op transport.SetattrOp) error {
	attrs, err := r.fs.Setattr(vfs.Ino(op.Ino), decodeSetAttrs(op))
	if err != nil {
		log.Warnf("[Runner] setattr error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	return req.Reply(transport.AttrOut{
		TTL:  attrs.TTL,
		Attr: copyFileAttr(attrs, vfs.Ino(op.Ino)),
	})
}

func (r *Runner) handleOpen(req transport.Request, op transport.OpenOp) error {
	obj, err := r.fs.Open(vfs.Ino(op.Ino), op.Flags)
	if err != nil {
		log.Warnf("[Runner] open error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	return req.Reply(transport.OpenOut{
		Handle:      uint64(obj.Handle),
		DirectIO:    obj.DirectIO,
		KeepCache:   obj.KeepCache,
		NonSeekable: !obj.Seekable,
		// cache-dir only applies to directory handles
		CacheDir: false,
	})
}

func (r *Runner) handleOpendir(req transport.Request, op transport.OpendirOp) error {
	obj, err := r.fs.OpenDir(vfs.Ino(op.Ino), op.Flags)
	if err != nil {
		log.Warnf("[Runner] opendir error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	return req.Reply(transport.OpenOut{
		Handle:      uint64(obj.Handle),
		DirectIO:    obj.DirectIO,
		KeepCache:   obj.KeepCache,
		NonSeekable: !obj.Seekable,
		CacheDir:    obj.CacheDir,
	})
}

func (r *Runner) handleSetxattr(req transport.Request, op transport.SetxattrOp) error {
	flag, err := vfs.DecodeXattrFlags(op.Flags)
	if err != nil {
		log.Warnf("[Runner] setxattr: bad flags %#x", op.Flags)
		return req.ReplyErr(vfs.Errno(err))
	}

	if err := r.fs.Setxattr(vfs.Ino(op.Ino), op.Name, op.Value, flag); err != nil {
		log.Warnf("[Runner] setxattr error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	return req.Reply(transport.Empty{})
}

func (r *Runner) handleGetxattr(req transport.Request, op transport.GetxattrOp) error {
	obj, err := r.fs.Getxattr(vfs.Ino(op.Ino), op.Name, op.Size)
	if err != nil {
		log.Warnf("[Runner] getxattr error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	// Size 0 asks for the value's length, not the value.
	if op.Size == 0 {
		return req.Reply(transport.XattrSizeOut{Size: obj.FullLen})
	}

	if len(obj.Data) > int(op.Size) {
		log.Errorf("[Runner] getxattr: backend returned %d bytes for a %d byte buffer", len(obj.Data), op.Size)
		return req.ReplyErr(syscall.EIO)
	}

	return req.Reply(transport.Data(obj.Data))
}

func (r *Runner) handleListxattr(req transport.Request, op transport.ListxattrOp) error {
	obj, err := r.fs.Listxattrs(vfs.Ino(op.Ino), op.Size)
	if err != nil {
		log.Warnf("[Runner] listxattr error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	if op.Size == 0 {
		return req.Reply(transport.XattrSizeOut{Size: obj.FullLen})
	}

	if len(obj.Data) > int(op.Size) {
		log.Errorf("[Runner] listxattr: backend returned %d bytes for a %d byte buffer", len(obj.Data), op.Size)
		return req.ReplyErr(syscall.EIO)
	}

	return req.Reply(transport.Data(obj.Data))
}

func (r *Runner) handleReaddir(req transport.Request, op transport.ReaddirOp) error {
	// readdirplus is not supported; reply ENOSYS without involving the
	// backend and the kernel falls back to plain readdir.
	if op.Plus {
		return req.ReplyErr(vfs.Errno(vfs.ErrNotImplemented))
	}

	entries, err := r.fs.Readdir(vfs.Ino(op.Ino), op.Offset)
	if err != nil {
		log.Warnf("[Runner] readdir error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	buf := transport.NewDirBuffer(op.Size)
	for _, e := range entries {
		if !buf.Add(e.Name, uint64(e.Ino), e.Type.DirentType(), e.Offset) {
			break
		}
	}

	return req.Reply(buf)
}

func (r *Runner) handleRead(req transport.Request, op transport.ReadOp) error {
	data, err := r.fs.Read(vfs.Ino(op.Ino), op.Offset, op.Size)
	if err != nil {
		log.Warnf("[Runner] read error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	return req.Reply(transport.Data(data))
}

func (r *Runner) handleWrite(req transport.Request, op transport.WriteOp) error {
	n, err := r.fs.Write(vfs.Ino(op.Ino), op.Offset, op.Size, op.Data)
	if err != nil {
		log.Warnf("[Runner] write error: %v", err)
		return req.ReplyErr(vfs.Errno(err))
	}

	return req.Reply(transport.WriteOut{Size: n})
}

// decodeSetAttrs translates a wire setattr into the sparse attribute
// update the backend sees. The set-to-now time variants resolve to the
// current time here, so backends never see them.
func decodeSetAttrs(op transport.SetattrOp) vfs.SetFileAttributes {
	set := vfs.SetFileAttributes{
		Mode:  op.Mode,
		Size:  op.Size,
		UID:   op.UID,
		GID:   op.GID,
		Atime: op.Atime,
		Mtime: op.Mtime,
		Ctime: op.Ctime,
	}

	if op.AtimeNow || op.MtimeNow {
		now := time.Now()
		if op.AtimeNow {
			set.Atime = &now
		}
		if op.MtimeNow {
			set.Mtime = &now
		}
	}

	return set
}

// copyFileAttr copies attributes into the wire attribute block.
// Passing the inode is required because FileAttributes does not carry
// one.
func copyFileAttr(from vfs.FileAttributes, ino vfs.Ino) transport.FileAttr {
	return transport.FileAttr{
		Ino:     uint64(ino),
		Size:    from.Size,
		Blocks:  from.Blocks,
		Mode:    from.Mode,
		Nlink:   from.Nlink,
		UID:     from.UID,
		GID:     from.GID,
		Rdev:    from.Rdev,
		Blksize: from.Blksize,
		Atime:   from.Atime,
		Mtime:   from.Mtime,
		Ctime:   from.Ctime,
	}
}
