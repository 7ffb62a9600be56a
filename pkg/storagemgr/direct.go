package storagemgr

import (
	"fmt"

	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/vector"
)

// DirectAppend writes chunk straight to the named table as already
// committed at cid, skipping the acceptance pipeline entirely (§4.4
// WAL replay: the rows being replayed already passed NOT NULL, dedup
// and type promotion the first time they were written). It returns the
// first physical row id assigned, so the caller can rebuild index
// entries for the new rows.
func (m *Manager) DirectAppend(name string, chunk *vector.Chunk, cid int64) (int64, error) {
	e, ok := m.Get(name)
	if !ok {
		return 0, fmt.Errorf("storagemgr: %q not found", name)
	}
	if e.Table.IsSchemaless() {
		return 0, fmt.Errorf("storagemgr: %q has no adopted schema for replay", name)
	}
	return e.Table.Append(chunk, cid)
}

// DirectUpdate replays a committed update: overwrite oldIDs' cell
// values with chunk's rows in place, preserving their physical row ids
// (§3.3), since replay applies a record already known durable.
func (m *Manager) DirectUpdate(name string, oldIDs []int64, chunk *vector.Chunk, cid int64) error {
	e, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	_, err := e.Table.Update(oldIDs, chunk, mvcc.Transaction{CommitID: cid})
	return err
}

// DirectDelete replays a committed delete at cid.
func (m *Manager) DirectDelete(name string, ids []int64, cid int64) error {
	e, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	_, err := e.Table.DeleteRows(ids, mvcc.Transaction{CommitID: cid})
	return err
}
