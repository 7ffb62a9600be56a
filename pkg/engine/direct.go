package engine

import (
	"fmt"

	"github.com/cuemby/quilldb/pkg/index"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

func (e *Engine) collectionByFull(full string) (*collection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	col, ok := e.collections[full]
	if !ok {
		return nil, fmt.Errorf("engine: collection %q not registered", full)
	}
	return col, nil
}

// DirectAppend implements wal.Applier: write chunk straight to storage
// at cid and extend every matching index's committed store from the
// same rows, without going through a pending-transaction state first
// (§4.4 replay, §4.6 index rebuild-on-write).
func (e *Engine) DirectAppend(full string, chunk *vector.Chunk, cid int64) error {
	start, err := e.storage.DirectAppend(full, chunk, cid)
	if err != nil {
		return err
	}
	return e.indexAppendChunk(full, chunk, start, cid)
}

// DirectUpdate implements wal.Applier: overwrite oldIDs' rows with
// chunk's rows in place, both immediately committed, updating every
// matching index to drop the old keys and insert the new ones under
// the same, unchanged row ids.
func (e *Engine) DirectUpdate(full string, oldIDs []int64, chunk *vector.Chunk, cid int64) error {
	if err := e.indexRemoveRows(full, oldIDs); err != nil {
		return err
	}
	if err := e.storage.DirectUpdate(full, oldIDs, chunk, cid); err != nil {
		return err
	}
	return e.indexInsertRows(full, chunk, oldIDs, cid)
}

// DirectDelete implements wal.Applier.
func (e *Engine) DirectDelete(full string, ids []int64, cid int64) error {
	if err := e.indexRemoveRows(full, ids); err != nil {
		return err
	}
	_, err := e.storage.DeleteRows(full, ids, directTxn(cid))
	return err
}

// indexAppendChunk inserts one committed entry per row of chunk, for
// every index attached to full's collection whose schema resolves
// against chunk's columns, row ids starting at start and committed at
// cid.
func (e *Engine) indexAppendChunk(full string, chunk *vector.Chunk, start int64, cid int64) error {
	ids := make([]int64, chunk.Cardinality())
	for i := range ids {
		ids[i] = start + int64(i)
	}
	return e.indexInsertRows(full, chunk, ids, cid)
}

// indexInsertRows inserts one committed entry per row of chunk, keyed
// by the matching entry of ids, for every index attached to full's
// collection whose schema resolves against chunk's columns, committed
// at cid.
func (e *Engine) indexInsertRows(full string, chunk *vector.Chunk, ids []int64, cid int64) error {
	col, err := e.collectionByFull(full)
	if err != nil {
		return err
	}
	colTypes := chunk.ColumnTypes()
	for _, name := range col.indexes.Names() {
		ix, _ := col.indexes.Index(name)
		if !ix.Schema.Matches(colTypes) {
			continue
		}
		var ops []index.DiskOp
		for row := 0; row < chunk.Cardinality(); row++ {
			vals := make([]types.Value, len(colTypes))
			for c := range colTypes {
				vals[c] = chunk.GetValue(c, row)
			}
			key, ok := ix.Schema.ExtractKey(e.arena, colTypes, vals)
			if !ok {
				continue
			}
			rowID := ids[row]
			ix.Insert(key, rowID, directTxn(cid))
			ops = append(ops, index.DiskOp{Key: key, RowID: rowID})
		}
		if agent, ok := col.agents[name]; ok && len(ops) > 0 {
			_ = agent.InsertMany(ops)
		}
	}
	return nil
}

// indexRemoveRows drops ids from every index attached to full's
// collection's committed store, mirroring the removal to each index's
// disk agent.
func (e *Engine) indexRemoveRows(full string, ids []int64) error {
	col, err := e.collectionByFull(full)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	colTypes, err := e.storage.StorageTypes(full)
	if err != nil {
		return err
	}
	buf := vector.NewChunk(e.arena, colTypes, len(ids))
	if err := e.storage.Fetch(full, buf, ids); err != nil {
		return err
	}
	for _, name := range col.indexes.Names() {
		ix, _ := col.indexes.Index(name)
		var ops []index.DiskOp
		for row := 0; row < buf.Cardinality(); row++ {
			vals := make([]types.Value, len(colTypes))
			for c := range colTypes {
				vals[c] = buf.GetValue(c, row)
			}
			key, ok := ix.Schema.ExtractKey(e.arena, colTypes, vals)
			if !ok {
				continue
			}
			rowID := ids[row]
			ix.MarkDelete(key, rowID, directTxn(0))
			ops = append(ops, index.DiskOp{Key: key, RowID: rowID})
		}
		if agent, ok := col.agents[name]; ok && len(ops) > 0 {
			_ = agent.RemoveMany(ops)
		}
	}
	return nil
}
