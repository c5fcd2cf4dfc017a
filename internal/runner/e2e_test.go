package runner

import (
	"bytes"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"fusekit/internal/memfs"
	"fusekit/internal/transport"
	"fusekit/internal/transport/scriptport"
	"fusekit/internal/vfs"
)

// End to end: a manifest-built tree served through the dispatch loop,
// exercised the way a kernel session would drive it.
func TestServeManifestSession(t *testing.T) {
	g := NewWithT(t)

	manifest, err := memfs.ParseManifest([]byte(`
root:
  files:
    greeting.txt:
      content: "hello from the manifest"
      xattrs:
        user.origin: manifest
  dirs:
    sub:
      files:
        inner.txt:
          content: "inner"
`))
	g.Expect(err).NotTo(HaveOccurred())

	fs, err := memfs.Build(manifest)
	g.Expect(err).NotTo(HaveOccurred())

	// The manifest decides inode numbers; fetch the file's before scripting
	// against it.
	obj, err := fs.Lookup(vfs.RootIno, "greeting.txt")
	g.Expect(err).NotTo(HaveOccurred())
	ino := uint64(obj.Ino)

	// Resolve / read / write / re-read, interleaved with a directory walk.
	sess := scriptport.NewSession(
		transport.LookupOp{Parent: uint64(vfs.RootIno), Name: "greeting.txt"},
		transport.LookupOp{Parent: uint64(vfs.RootIno), Name: "sub"},
		transport.ReaddirOp{Ino: uint64(vfs.RootIno), Size: 4096},
		transport.GetxattrOp{Ino: ino, Name: "user.origin", Size: 64},
		transport.ReadOp{Ino: ino, Offset: 0, Size: 1024},
		transport.WriteOp{Ino: ino, Offset: 0, Size: 5, Data: bytes.NewReader([]byte("HELLO"))},
		transport.ReadOp{Ino: ino, Offset: 0, Size: 1024},
	)

	r := New(fs, filepath.Join(t.TempDir(), "mnt"), &scriptport.Mounter{Session: sess})
	g.Expect(r.RunBlock()).To(Succeed())

	reqs := sess.Requests()
	for _, req := range reqs {
		g.Expect(req.Replied()).To(BeTrue())
	}

	entry, ok := reqs[0].Result()
	g.Expect(ok).To(BeTrue())
	g.Expect(entry.(transport.EntryOut).Ino).To(Equal(ino))

	subEntry, ok := reqs[1].Result()
	g.Expect(ok).To(BeTrue())
	g.Expect(subEntry.(transport.EntryOut).Attr.Mode & 0o170000).To(BeEquivalentTo(0o040000))

	listing, ok := reqs[2].Result()
	g.Expect(ok).To(BeTrue())
	names := []string{}
	for _, e := range listing.(*transport.DirBuffer).Entries() {
		names = append(names, e.Name)
	}
	g.Expect(names).To(Equal([]string{".", "..", "greeting.txt", "sub"}))

	xattr, ok := reqs[3].Result()
	g.Expect(ok).To(BeTrue())
	g.Expect(string(xattr.(transport.Data))).To(Equal("manifest"))

	before, ok := reqs[4].Result()
	g.Expect(ok).To(BeTrue())
	g.Expect(string(before.(transport.Data))).To(Equal("hello from the manifest"))

	written, ok := reqs[5].Result()
	g.Expect(ok).To(BeTrue())
	g.Expect(written.(transport.WriteOut).Size).To(BeEquivalentTo(5))

	after, ok := reqs[6].Result()
	g.Expect(ok).To(BeTrue())
	g.Expect(string(after.(transport.Data))).To(Equal("HELLO from the manifest"))
}
