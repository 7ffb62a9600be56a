package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
)

// BlockID identifies a fixed-size block within a BlockManager. Block 0
// is reserved for the file header in disk mode.
type BlockID int64

// InvalidBlockID is never a valid allocation result.
const InvalidBlockID BlockID = 0

// BlockSize is the fixed size, in bytes, of every block a BlockManager
// hands out.
const BlockSize = 4096

const fileMagic uint32 = 0x4f54_4258 // "OTBX"

// ErrClosed is returned by any BlockManager method called after Close.
var ErrClosed = errors.New("buffer: manager closed")

// BlockManager allocates, reads, and writes fixed-size blocks, either
// from process memory or from a single backing file (§4.1).
type BlockManager interface {
	// Allocate returns a fresh or free-list-recycled block id.
	Allocate() (BlockID, error)
	// Free returns id to the free list for future recycling.
	Free(id BlockID) error
	// Read returns a copy of the BlockSize bytes stored at id.
	Read(id BlockID) ([]byte, error)
	// Write stores data (must be BlockSize bytes) at id.
	Write(id BlockID, data []byte) error
	// Checkpoint serializes dirty state and the free list to the
	// header/metadata blocks, and records metaBlock as the current
	// row-group layout descriptor block. In memory mode it only
	// records metaBlock for MetaBlock to return.
	Checkpoint(metaBlock BlockID) error
	// MetaBlock returns the block id last recorded by Checkpoint, or
	// load_existing's read of it. 0 if never checkpointed.
	MetaBlock() (BlockID, error)
	Close() error
}

// MemoryManager is the in-memory BlockManager mode: allocations come
// from the process heap and there is no eviction or persistence.
type MemoryManager struct {
	mu       sync.Mutex
	blocks   map[BlockID][]byte
	freeList []BlockID
	next     BlockID
	metaID   BlockID
	closed   bool
}

// NewMemoryManager creates an empty in-memory block manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{blocks: make(map[BlockID][]byte), next: 1}
}

func (m *MemoryManager) Allocate() (BlockID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return InvalidBlockID, ErrClosed
	}
	if n := len(m.freeList); n > 0 {
		id := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		m.blocks[id] = make([]byte, BlockSize)
		return id, nil
	}
	id := m.next
	m.next++
	m.blocks[id] = make([]byte, BlockSize)
	return id, nil
}

func (m *MemoryManager) Free(id BlockID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.blocks, id)
	m.freeList = append(m.freeList, id)
	return nil
}

func (m *MemoryManager) Read(id BlockID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	data, ok := m.blocks[id]
	if !ok {
		return nil, fmt.Errorf("buffer: block %d not allocated", id)
	}
	out := make([]byte, BlockSize)
	copy(out, data)
	return out, nil
}

func (m *MemoryManager) Write(id BlockID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if len(data) != BlockSize {
		return fmt.Errorf("buffer: write data length %d != BlockSize %d", len(data), BlockSize)
	}
	buf := make([]byte, BlockSize)
	copy(buf, data)
	m.blocks[id] = buf
	return nil
}

func (m *MemoryManager) Checkpoint(metaBlock BlockID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metaID = metaBlock
	return nil
}

func (m *MemoryManager) MetaBlock() (BlockID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metaID, nil
}

func (m *MemoryManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FileManager is the single-file BlockManager mode: blocks live at
// fixed offsets in one .otbx file. Block 0 is the header: magic,
// MetaBlock pointer, free-list root, and the next never-allocated
// block id. The free list is a linked chain of blocks, each holding a
// pointer to the next free-list block and the free ids it carries.
type FileManager struct {
	mu           sync.Mutex
	f            *os.File
	metaBlock    BlockID
	freeListHead BlockID
	nextFresh    BlockID
	closed       bool
}

// OpenFileManager opens or creates path as a single-file block store.
// A freshly created file gets a zeroed header; an existing file is
// validated against fileMagic and its header is loaded (load_existing
// in §4.1).
func OpenFileManager(path string) (*FileManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("buffer: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	m := &FileManager{f: f}
	if fi.Size() == 0 {
		m.nextFresh = 1
		if err := m.writeHeader(); err != nil {
			f.Close()
			return nil, err
		}
		return m, nil
	}
	if err := m.loadHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return m, nil
}

func (m *FileManager) loadHeader() error {
	buf := make([]byte, BlockSize)
	if _, err := m.f.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("buffer: read header: %w", err)
	}
	if magic := binary.LittleEndian.Uint32(buf[0:4]); magic != fileMagic {
		return fmt.Errorf("buffer: bad file magic %x, not an otbx file", magic)
	}
	m.metaBlock = BlockID(binary.LittleEndian.Uint64(buf[8:16]))
	m.freeListHead = BlockID(binary.LittleEndian.Uint64(buf[16:24]))
	m.nextFresh = BlockID(binary.LittleEndian.Uint64(buf[24:32]))
	return nil
}

// writeHeader overwrites the header block at offset 0 with a single
// WriteAt and syncs the file before returning. The file is not
// truncated and no copy of the previous header is kept, so a crash in
// the middle of the write can leave a partly written header.
func (m *FileManager) writeHeader() error {
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(buf[0:4], fileMagic)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(m.metaBlock))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(m.freeListHead))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(m.nextFresh))
	if _, err := m.f.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("buffer: write header: %w", err)
	}
	return m.f.Sync()
}

func (m *FileManager) offset(id BlockID) int64 { return int64(id) * BlockSize }

func (m *FileManager) Allocate() (BlockID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return InvalidBlockID, ErrClosed
	}
	if m.freeListHead != InvalidBlockID {
		return m.popFreeList()
	}
	id := m.nextFresh
	m.nextFresh++
	zero := make([]byte, BlockSize)
	if _, err := m.f.WriteAt(zero, m.offset(id)); err != nil {
		return InvalidBlockID, fmt.Errorf("buffer: allocate block %d: %w", id, err)
	}
	if err := m.writeHeader(); err != nil {
		return InvalidBlockID, err
	}
	return id, nil
}

// popFreeList removes and returns one id from the free-list chain
// rooted at freeListHead, rewriting the chain head in place.
func (m *FileManager) popFreeList() (BlockID, error) {
	head := m.freeListHead
	buf := make([]byte, BlockSize)
	if _, err := m.f.ReadAt(buf, m.offset(head)); err != nil {
		return InvalidBlockID, fmt.Errorf("buffer: read free-list block %d: %w", head, err)
	}
	next := BlockID(binary.LittleEndian.Uint64(buf[0:8]))
	count := binary.LittleEndian.Uint32(buf[8:12])
	if count == 0 {
		// Empty carrier block: recycle the carrier itself as the id.
		m.freeListHead = next
		if err := m.writeHeader(); err != nil {
			return InvalidBlockID, err
		}
		return head, nil
	}
	idOffset := 12 + (count-1)*8
	id := BlockID(binary.LittleEndian.Uint64(buf[idOffset : idOffset+8]))
	binary.LittleEndian.PutUint32(buf[8:12], count-1)
	if _, err := m.f.WriteAt(buf, m.offset(head)); err != nil {
		return InvalidBlockID, err
	}
	return id, nil
}

func (m *FileManager) Free(id BlockID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	// Push id onto the free-list carrier at freeListHead, allocating a
	// new carrier block (without recursing into Allocate, which would
	// itself consult the free list) when there is none yet or the
	// current carrier is full.
	const maxIDsPerBlock = (BlockSize - 12) / 8
	if m.freeListHead != InvalidBlockID {
		buf := make([]byte, BlockSize)
		if _, err := m.f.ReadAt(buf, m.offset(m.freeListHead)); err != nil {
			return err
		}
		count := binary.LittleEndian.Uint32(buf[8:12])
		if count < maxIDsPerBlock {
			idOffset := 12 + count*8
			binary.LittleEndian.PutUint64(buf[idOffset:idOffset+8], uint64(id))
			binary.LittleEndian.PutUint32(buf[8:12], count+1)
			_, err := m.f.WriteAt(buf, m.offset(m.freeListHead))
			return err
		}
	}
	carrier := id
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.freeListHead))
	binary.LittleEndian.PutUint32(buf[8:12], 0)
	if _, err := m.f.WriteAt(buf, m.offset(carrier)); err != nil {
		return err
	}
	m.freeListHead = carrier
	return m.writeHeader()
}

func (m *FileManager) Read(id BlockID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	buf := make([]byte, BlockSize)
	if _, err := m.f.ReadAt(buf, m.offset(id)); err != nil {
		return nil, fmt.Errorf("buffer: read block %d: %w", id, err)
	}
	return buf, nil
}

func (m *FileManager) Write(id BlockID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if len(data) != BlockSize {
		return fmt.Errorf("buffer: write data length %d != BlockSize %d", len(data), BlockSize)
	}
	if _, err := m.f.WriteAt(data, m.offset(id)); err != nil {
		return fmt.Errorf("buffer: write block %d: %w", id, err)
	}
	return nil
}

func (m *FileManager) Checkpoint(metaBlock BlockID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.metaBlock = metaBlock
	if err := m.writeHeader(); err != nil {
		return err
	}
	return m.f.Sync()
}

func (m *FileManager) MetaBlock() (BlockID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metaBlock, nil
}

func (m *FileManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.f.Close()
}
