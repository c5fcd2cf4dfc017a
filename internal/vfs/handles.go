package vfs

import "sync"

// openHandle records what a handle was issued for.
type openHandle struct {
	ino   Ino
	isDir bool
	flags uint32
}

// HandleManager issues open-file handles for backends. Handle IDs are
// monotonically increasing and never reused, so a stale handle can
// never alias a live one.
type HandleManager struct {
	mu         sync.RWMutex
	handles    map[HandleID]*openHandle
	nextHandle HandleID
}

// NewHandleManager creates a new handle manager
func NewHandleManager() *HandleManager {
	return &HandleManager{
		handles:    make(map[HandleID]*openHandle),
		nextHandle: 1,
	}
}

// Allocate creates a new handle for the given inode
func (hm *HandleManager) Allocate(ino Ino, isDir bool, flags uint32) HandleID {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	handle := hm.nextHandle
	hm.nextHandle++

	hm.handles[handle] = &openHandle{
		ino:   ino,
		isDir: isDir,
		flags: flags,
	}

	return handle
}

// Lookup returns the inode a handle was issued for
func (hm *HandleManager) Lookup(h HandleID) (Ino, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	info, ok := hm.handles[h]
	if !ok {
		return 0, false
	}
	return info.ino, true
}

// IsDir reports whether the handle was issued by OpenDir
func (hm *HandleManager) IsDir(h HandleID) bool {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	if info, ok := hm.handles[h]; ok {
		return info.isDir
	}
	return false
}

// Release frees a handle
func (hm *HandleManager) Release(h HandleID) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	delete(hm.handles, h)
}

// Clear removes all handles, returning the count of handles cleared
func (hm *HandleManager) Clear() int {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	count := len(hm.handles)
	hm.handles = make(map[HandleID]*openHandle)
	// Don't reset nextHandle to avoid handle ID reuse issues
	return count
}
