package buffer

import (
	"container/list"
	"fmt"
	"sync"
)

// Handle is a pinned view of one block's bytes. Callers mutate Data in
// place and must call Unpin(dirty) when done; Data must not be
// retained past Unpin.
type Handle struct {
	ID   BlockID
	Data []byte
}

type frame struct {
	id       BlockID
	data     []byte
	pinCount int
	dirty    bool
	elem     *list.Element // position in the eviction LRU list; nil while pinned
}

// Pool layers pinning and (in disk mode) LRU eviction on top of a
// BlockManager. MaxFrames <= 0 disables eviction entirely, which is
// how in-memory mode is wired: every block stays resident for the
// life of the pool (§4.1 "no eviction").
type Pool struct {
	mgr       BlockManager
	maxFrames int

	mu     sync.Mutex
	frames map[BlockID]*frame
	lru    *list.List // of BlockID, front = least recently used
}

// NewPool wraps mgr with pinning and, when maxFrames > 0, LRU
// eviction of unpinned frames once the resident set exceeds
// maxFrames.
func NewPool(mgr BlockManager, maxFrames int) *Pool {
	return &Pool{
		mgr:       mgr,
		maxFrames: maxFrames,
		frames:    make(map[BlockID]*frame),
		lru:       list.New(),
	}
}

// Pin loads (or returns the already-resident) block id, incrementing
// its pin count, and returns a Handle over its bytes.
func (p *Pool) Pin(id BlockID) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.frames[id]
	if !ok {
		data, err := p.mgr.Read(id)
		if err != nil {
			return nil, fmt.Errorf("buffer: pin block %d: %w", id, err)
		}
		f = &frame{id: id, data: data}
		p.frames[id] = f
	}
	if f.elem != nil {
		p.lru.Remove(f.elem)
		f.elem = nil
	}
	f.pinCount++
	return &Handle{ID: id, Data: f.data}, nil
}

// Unpin releases one pin on id. dirty marks the frame's bytes as
// modified since the last flush; Handle.Data must have been written
// in place before calling Unpin(true).
func (p *Pool) Unpin(id BlockID, dirty bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.frames[id]
	if !ok {
		return fmt.Errorf("buffer: unpin block %d: not pinned", id)
	}
	if dirty {
		f.dirty = true
	}
	if f.pinCount == 0 {
		return fmt.Errorf("buffer: unpin block %d: not currently pinned", id)
	}
	f.pinCount--
	if f.pinCount == 0 {
		f.elem = p.lru.PushBack(id)
		p.evictIfNeeded()
	}
	return nil
}

// Allocate requests a fresh block from the underlying manager.
func (p *Pool) Allocate() (BlockID, error) { return p.mgr.Allocate() }

// Free returns id to the manager's free list. The caller must ensure
// id is not pinned.
func (p *Pool) Free(id BlockID) error {
	p.mu.Lock()
	if f, ok := p.frames[id]; ok {
		if f.elem != nil {
			p.lru.Remove(f.elem)
		}
		delete(p.frames, id)
	}
	p.mu.Unlock()
	return p.mgr.Free(id)
}

// evictIfNeeded flushes and drops least-recently-used unpinned frames
// until the resident set is within maxFrames. Caller holds p.mu.
func (p *Pool) evictIfNeeded() {
	if p.maxFrames <= 0 {
		return
	}
	for len(p.frames) > p.maxFrames {
		elem := p.lru.Front()
		if elem == nil {
			return // everything resident is pinned; cannot evict further
		}
		id := elem.Value.(BlockID)
		f := p.frames[id]
		if f.dirty {
			if err := p.mgr.Write(id, f.data); err != nil {
				// Leave the frame resident; a future eviction attempt
				// will retry the flush. The caller observes no error
				// here since eviction is a background bookkeeping step.
				return
			}
		}
		p.lru.Remove(elem)
		delete(p.frames, id)
	}
}

// Flush writes every dirty resident frame back through the manager
// without evicting it, used by checkpoint (§4.1).
func (p *Pool) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, f := range p.frames {
		if !f.dirty {
			continue
		}
		if err := p.mgr.Write(id, f.data); err != nil {
			return fmt.Errorf("buffer: flush block %d: %w", id, err)
		}
		f.dirty = false
	}
	return nil
}

// Checkpoint flushes dirty frames and records metaBlock as the
// current row-group layout descriptor in the manager's header.
func (p *Pool) Checkpoint(metaBlock BlockID) error {
	if err := p.Flush(); err != nil {
		return err
	}
	return p.mgr.Checkpoint(metaBlock)
}

// MetaBlock returns the manager's last-checkpointed metadata block.
func (p *Pool) MetaBlock() (BlockID, error) { return p.mgr.MetaBlock() }

// Close flushes and closes the underlying manager.
func (p *Pool) Close() error {
	if err := p.Flush(); err != nil {
		return err
	}
	return p.mgr.Close()
}

// Resident reports how many frames are currently held in the pool,
// for tests and diagnostics.
func (p *Pool) Resident() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}
