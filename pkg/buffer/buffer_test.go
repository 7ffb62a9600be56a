package buffer

import (
	"path/filepath"
	"testing"
)

func TestMemoryManagerAllocateReadWrite(t *testing.T) {
	m := NewMemoryManager()
	id, err := m.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, BlockSize)
	buf[0] = 42
	if err := m.Write(id, buf); err != nil {
		t.Fatal(err)
	}
	got, err := m.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 42 {
		t.Errorf("read back %d, want 42", got[0])
	}
}

func TestMemoryManagerFreeListRecycles(t *testing.T) {
	m := NewMemoryManager()
	a, _ := m.Allocate()
	if err := m.Free(a); err != nil {
		t.Fatal(err)
	}
	b, err := m.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	if b != a {
		t.Errorf("allocate after free = %d, want recycled id %d", b, a)
	}
}

func TestFileManagerPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.otbx")
	m, err := OpenFileManager(path)
	if err != nil {
		t.Fatal(err)
	}
	id, err := m.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, BlockSize)
	buf[1] = 9
	if err := m.Write(id, buf); err != nil {
		t.Fatal(err)
	}
	if err := m.Checkpoint(id); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenFileManager(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	meta, err := reopened.MetaBlock()
	if err != nil {
		t.Fatal(err)
	}
	if meta != id {
		t.Errorf("reopened meta block = %d, want %d", meta, id)
	}
	got, err := reopened.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if got[1] != 9 {
		t.Errorf("reopened block byte = %d, want 9", got[1])
	}
}

func TestFileManagerFreeListRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.otbx")
	m, err := OpenFileManager(path)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	ids := make([]BlockID, 5)
	for i := range ids {
		id, err := m.Allocate()
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = id
	}
	for _, id := range ids {
		if err := m.Free(id); err != nil {
			t.Fatal(err)
		}
	}
	seen := map[BlockID]bool{}
	for range ids {
		id, err := m.Allocate()
		if err != nil {
			t.Fatal(err)
		}
		seen[id] = true
	}
	if len(seen) != len(ids) {
		t.Errorf("recycled %d distinct ids, want %d", len(seen), len(ids))
	}
}

func TestPoolPinUnpinAndEviction(t *testing.T) {
	mgr := NewMemoryManager()
	pool := NewPool(mgr, 2)

	ids := make([]BlockID, 3)
	for i := range ids {
		id, err := pool.Allocate()
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = id
		h, err := pool.Pin(id)
		if err != nil {
			t.Fatal(err)
		}
		h.Data[0] = byte(i + 1)
		if err := pool.Unpin(id, true); err != nil {
			t.Fatal(err)
		}
	}
	if pool.Resident() > 2 {
		t.Errorf("resident frames = %d, want <= 2 (maxFrames)", pool.Resident())
	}

	h, err := pool.Pin(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if h.Data[0] != 1 {
		t.Errorf("evicted-and-reloaded block byte = %d, want 1", h.Data[0])
	}
	pool.Unpin(ids[0], false)
}

func TestPoolCheckpointPersistsMetaBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.otbx")
	mgr, err := OpenFileManager(path)
	if err != nil {
		t.Fatal(err)
	}
	pool := NewPool(mgr, 0)
	id, err := pool.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	h, err := pool.Pin(id)
	if err != nil {
		t.Fatal(err)
	}
	h.Data[0] = 5
	pool.Unpin(id, true)

	if err := pool.Checkpoint(id); err != nil {
		t.Fatal(err)
	}
	if err := pool.Close(); err != nil {
		t.Fatal(err)
	}
}
