package billyfs

import (
	"bytes"
	"errors"
	"syscall"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	billymem "github.com/go-git/go-billy/v5/memfs"

	"fusekit/internal/vfs"
)

func writeFile(t *testing.T, fs billy.Filesystem, path string, data []byte) {
	t.Helper()
	f, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create(%s): %v", path, err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatalf("Write(%s): %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close(%s): %v", path, err)
	}
}

func fixture(t *testing.T) *BillyFS {
	t.Helper()
	fs := billymem.New()
	writeFile(t, fs, "/hello.txt", []byte("hello world"))
	writeFile(t, fs, "/docs/readme.md", []byte("# docs"))
	return New(fs)
}

func TestLookup(t *testing.T) {
	b := fixture(t)

	obj, err := b.Lookup(vfs.RootIno, "hello.txt")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if obj.Ino == vfs.RootIno {
		t.Error("file ino collides with root")
	}
	if obj.Attributes.Size != 11 {
		t.Errorf("size = %d, want 11", obj.Attributes.Size)
	}
	if obj.Attributes.Mode&syscall.S_IFMT != syscall.S_IFREG {
		t.Errorf("mode = %o, want regular file", obj.Attributes.Mode)
	}
}

func TestLookup_Dir(t *testing.T) {
	b := fixture(t)

	docs, err := b.Lookup(vfs.RootIno, "docs")
	if err != nil {
		t.Fatalf("Lookup(docs): %v", err)
	}
	if docs.Attributes.Mode&syscall.S_IFMT != syscall.S_IFDIR {
		t.Errorf("mode = %o, want directory", docs.Attributes.Mode)
	}

	// Resolve through the subdirectory
	if _, err := b.Lookup(docs.Ino, "readme.md"); err != nil {
		t.Errorf("Lookup(docs/readme.md): %v", err)
	}
}

func TestLookup_Missing(t *testing.T) {
	b := fixture(t)

	if _, err := b.Lookup(vfs.RootIno, "nope"); !errors.Is(err, vfs.ErrNoEntry) {
		t.Errorf("Lookup(nope) = %v, want ErrNoEntry", err)
	}
	if _, err := b.Lookup(999, "x"); !errors.Is(err, vfs.ErrNoEntry) {
		t.Errorf("Lookup under unknown ino = %v, want ErrNoEntry", err)
	}
}

// A path keeps its inode number across repeated resolutions.
func TestLookup_StableInos(t *testing.T) {
	b := fixture(t)

	first, err := b.Lookup(vfs.RootIno, "hello.txt")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	second, err := b.Lookup(vfs.RootIno, "hello.txt")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if first.Ino != second.Ino {
		t.Errorf("ino changed between lookups: %d vs %d", first.Ino, second.Ino)
	}
}

func TestGetattr_Root(t *testing.T) {
	b := fixture(t)

	attrs, err := b.Getattr(vfs.RootIno)
	if err != nil {
		t.Fatalf("Getattr(root): %v", err)
	}
	if attrs.Mode&syscall.S_IFMT != syscall.S_IFDIR {
		t.Errorf("root mode = %o, want directory", attrs.Mode)
	}
}

func TestGetattr_File(t *testing.T) {
	b := fixture(t)

	obj, _ := b.Lookup(vfs.RootIno, "hello.txt")
	attrs, err := b.Getattr(obj.Ino)
	if err != nil {
		t.Fatalf("Getattr: %v", err)
	}
	if attrs.Size != 11 {
		t.Errorf("size = %d, want 11", attrs.Size)
	}

	if _, err := b.Getattr(999); !errors.Is(err, vfs.ErrNoEntry) {
		t.Errorf("Getattr(999) = %v, want ErrNoEntry", err)
	}
}

func TestSetattr_Truncate(t *testing.T) {
	b := fixture(t)
	obj, _ := b.Lookup(vfs.RootIno, "hello.txt")

	size := uint64(5)
	attrs, err := b.Setattr(obj.Ino, vfs.SetFileAttributes{Size: &size})
	if err != nil {
		t.Fatalf("Setattr: %v", err)
	}
	if attrs.Size != 5 {
		t.Errorf("size after truncate = %d, want 5", attrs.Size)
	}

	data, err := b.Read(obj.Ino, 0, 64)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q, want hello", data)
	}
}

func TestOpen(t *testing.T) {
	b := fixture(t)
	file, _ := b.Lookup(vfs.RootIno, "hello.txt")
	dir, _ := b.Lookup(vfs.RootIno, "docs")

	res, err := b.Open(file.Ino, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if res.Handle == 0 {
		t.Error("handle should not be 0")
	}

	if _, err := b.Open(dir.Ino, 0); !errors.Is(err, vfs.ErrNotFile) {
		t.Errorf("Open(dir) = %v, want ErrNotFile", err)
	}
	if _, err := b.OpenDir(file.Ino, 0); !errors.Is(err, vfs.ErrNotDirectory) {
		t.Errorf("OpenDir(file) = %v, want ErrNotDirectory", err)
	}
	if _, err := b.OpenDir(vfs.RootIno, 0); err != nil {
		t.Errorf("OpenDir(root): %v", err)
	}
}

func TestReaddir(t *testing.T) {
	b := fixture(t)

	entries, err := b.Readdir(vfs.RootIno, 0)
	if err != nil {
		t.Fatalf("Readdir: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	// Children sorted by name after the dot entries
	want := []string{".", "..", "docs", "hello.txt"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	if entries[2].Type != vfs.FileTypeDirectory {
		t.Errorf("docs type = %v, want directory", entries[2].Type)
	}
	if entries[3].Type != vfs.FileTypeRegular {
		t.Errorf("hello.txt type = %v, want regular", entries[3].Type)
	}
}

func TestReaddir_Cursor(t *testing.T) {
	b := fixture(t)

	entries, err := b.Readdir(vfs.RootIno, 3)
	if err != nil {
		t.Fatalf("Readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "hello.txt" || entries[0].Offset != 4 {
		t.Errorf("resumed entries = %+v, want only hello.txt at offset 4", entries)
	}
}

func TestRead(t *testing.T) {
	b := fixture(t)
	obj, _ := b.Lookup(vfs.RootIno, "hello.txt")

	data, err := b.Read(obj.Ino, 6, 64)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "world" {
		t.Errorf("data = %q, want world", data)
	}

	// Past end: empty, not an error
	data, err = b.Read(obj.Ino, 100, 10)
	if err != nil {
		t.Errorf("past-end read error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("past-end read = %q, want empty", data)
	}
}

func TestWrite(t *testing.T) {
	b := fixture(t)
	obj, _ := b.Lookup(vfs.RootIno, "hello.txt")

	n, err := b.Write(obj.Ino, 0, 5, bytes.NewReader([]byte("HELLO")))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 5 {
		t.Errorf("n = %d, want 5", n)
	}

	data, _ := b.Read(obj.Ino, 0, 64)
	if string(data) != "HELLO world" {
		t.Errorf("data = %q, want %q", data, "HELLO world")
	}
}

// Extended attributes are not a billy capability; they answer ENOSYS
// through the embedded defaults.
func TestXattrs_NotImplemented(t *testing.T) {
	b := fixture(t)

	if err := b.Setxattr(vfs.RootIno, "user.a", nil, vfs.XattrCreate); !errors.Is(err, vfs.ErrNotImplemented) {
		t.Errorf("Setxattr = %v, want ErrNotImplemented", err)
	}
	if _, err := b.Getxattr(vfs.RootIno, "user.a", 0); !errors.Is(err, vfs.ErrNotImplemented) {
		t.Errorf("Getxattr = %v, want ErrNotImplemented", err)
	}
	if _, err := b.Listxattrs(vfs.RootIno, 0); !errors.Is(err, vfs.ErrNotImplemented) {
		t.Errorf("Listxattrs = %v, want ErrNotImplemented", err)
	}
}
