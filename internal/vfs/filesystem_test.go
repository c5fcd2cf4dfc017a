package vfs

import (
	"bytes"
	"errors"
	"testing"
)

func TestNotImplementedFS(t *testing.T) {
	fs := NotImplementedFS{}

	checks := []struct {
		op  string
		err error
	}{
		{"Lookup", func() error { _, err := fs.Lookup(RootIno, "x"); return err }()},
		{"Getattr", func() error { _, err := fs.Getattr(RootIno); return err }()},
		{"Setattr", func() error { _, err := fs.Setattr(RootIno, SetFileAttributes{}); return err }()},
		{"Open", func() error { _, err := fs.Open(2, 0); return err }()},
		{"OpenDir", func() error { _, err := fs.OpenDir(RootIno, 0); return err }()},
		{"Setxattr", fs.Setxattr(RootIno, "user.a", nil, XattrCreate)},
		{"Getxattr", func() error { _, err := fs.Getxattr(RootIno, "user.a", 0); return err }()},
		{"Listxattrs", func() error { _, err := fs.Listxattrs(RootIno, 0); return err }()},
		{"Readdir", func() error { _, err := fs.Readdir(RootIno, 0); return err }()},
		{"Read", func() error { _, err := fs.Read(2, 0, 16); return err }()},
		{"Write", func() error { _, err := fs.Write(2, 0, 1, bytes.NewReader([]byte{0})); return err }()},
	}

	for _, c := range checks {
		if !errors.Is(c.err, ErrNotImplemented) {
			t.Errorf("%s = %v, want ErrNotImplemented", c.op, c.err)
		}
	}
}

// Embedding NotImplementedFS and overriding one method leaves the rest
// as ENOSYS defaults.
func TestNotImplementedFS_Embedded(t *testing.T) {
	type readOnly struct {
		NotImplementedFS
	}

	var fs Filesystem = readOnly{}

	if _, err := fs.Getattr(RootIno); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("embedded Getattr = %v, want ErrNotImplemented", err)
	}
}
