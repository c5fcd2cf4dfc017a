package inode

import (
	"syscall"
	"testing"

	"fusekit/internal/vfs"
)

// payload is the minimal file payload for table tests.
type payload struct {
	attrs vfs.FileAttributes
}

func newPayload() *payload {
	return &payload{attrs: vfs.NewFileAttributes(syscall.S_IFREG | 0o644)}
}

func (p *payload) Attrs() vfs.FileAttributes {
	return p.attrs
}

func TestNewTable_Root(t *testing.T) {
	table := NewTable[*payload]()

	entry, ok := table.Get(vfs.RootIno)
	if !ok {
		t.Fatal("root entry missing")
	}
	if !entry.IsDir() {
		t.Error("root should be a directory")
	}
	if _, ok := entry.Parent(); ok {
		t.Error("root should have no parent")
	}

	ino, _, ok := table.Lookup("/")
	if !ok || ino != vfs.RootIno {
		t.Errorf("Lookup(/) = %d, %v, want root", ino, ok)
	}
}

func TestPushEntry(t *testing.T) {
	table := NewTable[*payload]()

	dirIno, ok := table.PushEntry(vfs.RootIno, "dir", NewDir[*payload]())
	if !ok {
		t.Fatal("PushEntry(dir) failed")
	}
	fileIno, ok := table.PushEntry(dirIno, "file.txt", NewFile(newPayload()))
	if !ok {
		t.Fatal("PushEntry(file) failed")
	}

	// Strictly increasing allocation
	if dirIno <= vfs.RootIno {
		t.Errorf("dir ino = %d, want > root", dirIno)
	}
	if fileIno <= dirIno {
		t.Errorf("file ino = %d, want > %d", fileIno, dirIno)
	}

	// Parent back-references
	entry, _ := table.Get(fileIno)
	parent, ok := entry.Parent()
	if !ok || parent != dirIno {
		t.Errorf("file parent = %d, want %d", parent, dirIno)
	}
}

func TestPushEntry_MissingParent(t *testing.T) {
	table := NewTable[*payload]()

	if _, ok := table.PushEntry(999, "x", NewFile(newPayload())); ok {
		t.Error("PushEntry to missing parent should fail")
	}
}

func TestPushEntry_FileParent(t *testing.T) {
	table := NewTable[*payload]()

	fileIno, ok := table.PushEntry(vfs.RootIno, "file", NewFile(newPayload()))
	if !ok {
		t.Fatal("PushEntry(file) failed")
	}

	if _, ok := table.PushEntry(fileIno, "child", NewFile(newPayload())); ok {
		t.Error("PushEntry under a file should fail")
	}
}

func TestLookup_LeadingSlash(t *testing.T) {
	table := NewTable[*payload]()

	dirIno, _ := table.PushEntry(vfs.RootIno, "a", NewDir[*payload]())
	fileIno, _ := table.PushEntry(dirIno, "b", NewFile(newPayload()))

	for _, path := range []string{"a/b", "/a/b", "a/b/"} {
		ino, entry, ok := table.Lookup(path)
		if !ok {
			t.Fatalf("Lookup(%q) failed", path)
		}
		if ino != fileIno {
			t.Errorf("Lookup(%q) = %d, want %d", path, ino, fileIno)
		}
		if entry.IsDir() {
			t.Errorf("Lookup(%q) returned a directory", path)
		}
	}
}

func TestLookup_Missing(t *testing.T) {
	table := NewTable[*payload]()
	table.PushEntry(vfs.RootIno, "a", NewDir[*payload]())

	if _, _, ok := table.Lookup("a/missing"); ok {
		t.Error("Lookup of missing path should fail")
	}
	if _, _, ok := table.Lookup("nope"); ok {
		t.Error("Lookup of missing root child should fail")
	}
}

func TestLookup_FileIntermediate(t *testing.T) {
	table := NewTable[*payload]()
	table.PushEntry(vfs.RootIno, "f", NewFile(newPayload()))

	if _, _, ok := table.Lookup("f/child"); ok {
		t.Error("Lookup through a file should fail")
	}
}

// Children enumerate in insertion order, and the order holds across
// repeated enumerations.
func TestDirectory_ChildrenOrder(t *testing.T) {
	table := NewTable[*payload]()

	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		if _, ok := table.PushEntry(vfs.RootIno, name, NewFile(newPayload())); !ok {
			t.Fatalf("PushEntry(%q) failed", name)
		}
	}

	root, _ := table.Get(vfs.RootIno)
	dir, _ := root.Dir()
	if dir.Len() != len(names) {
		t.Fatalf("Len = %d, want %d", dir.Len(), len(names))
	}

	for round := 0; round < 3; round++ {
		i := 0
		for name := range dir.Children() {
			if name != names[i] {
				t.Fatalf("round %d: children[%d] = %q, want %q", round, i, name, names[i])
			}
			i++
		}
	}
}

func TestEntry_Kinds(t *testing.T) {
	file := NewFile(newPayload())
	if file.IsDir() {
		t.Error("file entry reports IsDir")
	}
	if _, ok := file.Dir(); ok {
		t.Error("Dir() on a file should fail")
	}
	if _, ok := file.File(); !ok {
		t.Error("File() on a file should succeed")
	}
	if file.FileType() != vfs.FileTypeRegular {
		t.Errorf("file FileType = %v, want regular", file.FileType())
	}

	dir := NewDir[*payload]()
	if !dir.IsDir() {
		t.Error("dir entry does not report IsDir")
	}
	if _, ok := dir.File(); ok {
		t.Error("File() on a dir should fail")
	}
	if dir.FileType() != vfs.FileTypeDirectory {
		t.Errorf("dir FileType = %v, want directory", dir.FileType())
	}
}
