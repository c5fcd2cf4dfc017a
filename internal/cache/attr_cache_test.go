package cache

import (
	"syscall"
	"testing"
	"time"

	"fusekit/internal/vfs"
)

func testAttrs(size uint64) vfs.FileAttributes {
	attrs := vfs.NewFileAttributes(syscall.S_IFREG | 0o644)
	attrs.Size = size
	return attrs
}

func TestAttrCache_GetSet(t *testing.T) {
	c := NewAttrCache(time.Minute, 0)

	if _, ok := c.Get(1); ok {
		t.Error("empty cache should miss")
	}

	c.Set(1, testAttrs(10))
	attrs, ok := c.Get(1)
	if !ok {
		t.Fatal("cache should hit after Set")
	}
	if attrs.Size != 10 {
		t.Errorf("size = %d, want 10", attrs.Size)
	}
}

func TestAttrCache_Expiry(t *testing.T) {
	c := NewAttrCache(10*time.Millisecond, 0)

	c.Set(1, testAttrs(10))
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(1); ok {
		t.Error("entry should have expired")
	}
}

func TestAttrCache_NoExpiry(t *testing.T) {
	c := NewAttrCache(0, 0)

	c.Set(1, testAttrs(10))
	time.Sleep(10 * time.Millisecond)

	if _, ok := c.Get(1); !ok {
		t.Error("zero TTL should never expire")
	}
}

func TestAttrCache_MaxSize(t *testing.T) {
	c := NewAttrCache(0, 2)

	c.Set(1, testAttrs(1))
	c.Set(2, testAttrs(2))
	c.Set(3, testAttrs(3))

	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
	if _, ok := c.Get(3); ok {
		t.Error("entry past capacity should not be cached")
	}

	// Known inodes still refresh at capacity
	c.Set(1, testAttrs(100))
	attrs, _ := c.Get(1)
	if attrs.Size != 100 {
		t.Errorf("refresh at capacity failed, size = %d", attrs.Size)
	}
}

func TestAttrCache_Invalidate(t *testing.T) {
	c := NewAttrCache(0, 0)

	c.Set(1, testAttrs(1))
	c.Set(2, testAttrs(2))

	c.InvalidateIno(1)
	if _, ok := c.Get(1); ok {
		t.Error("invalidated inode should miss")
	}
	if _, ok := c.Get(2); !ok {
		t.Error("other inode should survive")
	}

	c.Invalidate()
	if c.Size() != 0 {
		t.Errorf("size after Invalidate = %d, want 0", c.Size())
	}
}

func TestAttrCache_Stats(t *testing.T) {
	c := NewAttrCache(time.Minute, 7)
	c.Set(1, testAttrs(1))

	stats := c.Stats()
	if stats.Size != 1 || stats.MaxSize != 7 || stats.TTL != time.Minute {
		t.Errorf("stats = %+v", stats)
	}
}
