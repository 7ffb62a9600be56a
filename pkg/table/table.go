package table

import (
	"fmt"
	"sync"

	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

// ColumnDef names and types one column of a Table's schema.
type ColumnDef struct {
	Name string
	Type types.ComplexLogicalType
}

// PendingAppend is what a caller must remember between a transactional
// Append and its eventual commit/revert: which rows to finalize.
type PendingAppend struct {
	StartRow int64
	Count    int
}

// Table is data_table: a schema, a RowGroup of segments, and the
// mutating operation set of §4.2. Every method takes the table's
// mutex, so concurrent callers are serialized one operation at a time.
type Table struct {
	mu         sync.Mutex
	columns    []ColumnDef
	schemaless bool
	group      *RowGroup
	arena      *types.Arena
}

// NewTable creates a Table with a fixed schema.
func NewTable(arena *types.Arena, columns []ColumnDef) *Table {
	colTypes := make([]types.ComplexLogicalType, len(columns))
	for i, c := range columns {
		colTypes[i] = c.Type
	}
	return &Table{
		columns: columns,
		group:   newRowGroup(arena, colTypes),
		arena:   arena,
	}
}

// NewComputingTable creates a schema-less Table whose column set is
// adopted from the first chunk the storage manager routes to it
// (§4.3 schema adoption).
func NewComputingTable(arena *types.Arena) *Table {
	return &Table{schemaless: true, arena: arena}
}

// IsSchemaless reports whether the table is still awaiting schema
// adoption.
func (t *Table) IsSchemaless() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.schemaless
}

// AdoptSchema fixes a schema-less table's columns to the given
// definitions; it is a no-op (and returns an error) if the table
// already has a schema.
func (t *Table) AdoptSchema(columns []ColumnDef) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.schemaless {
		return fmt.Errorf("table: schema already adopted")
	}
	colTypes := make([]types.ComplexLogicalType, len(columns))
	for i, c := range columns {
		colTypes[i] = c.Type
	}
	t.columns = columns
	t.group = newRowGroup(t.arena, colTypes)
	t.schemaless = false
	return nil
}

// Schema returns the table's current column definitions.
func (t *Table) Schema() []ColumnDef {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ColumnDef, len(t.columns))
	copy(out, t.columns)
	return out
}

// TotalRows returns the number of row ids ever assigned (including
// deleted, uncompacted rows).
func (t *Table) TotalRows() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.group.totalRows
}

// Append adds chunk's rows as already committed at cid (the
// non-transactional append path: an implicit, immediately-committed
// single-row transaction).
func (t *Table) Append(chunk *vector.Chunk, cid int64) (int64, error) {
	return t.appendCommon(chunk, mvcc.Transaction{ID: 0, CommitID: cid}, true)
}

// AppendTxn adds chunk's rows tagged pending-insert by txn.ID. The
// caller must later call CommitAppend or RevertAppend with the
// returned (start, count).
func (t *Table) AppendTxn(chunk *vector.Chunk, txn mvcc.Transaction) (int64, error) {
	return t.appendCommon(chunk, txn, false)
}

func (t *Table) appendCommon(chunk *vector.Chunk, txn mvcc.Transaction, direct bool) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.schemaless {
		return 0, fmt.Errorf("table: cannot append before schema adoption")
	}
	n := chunk.Cardinality()
	if n == 0 {
		return t.group.totalRows, nil
	}
	if len(chunk.ColumnTypes()) != len(t.columns) {
		return 0, fmt.Errorf("table: chunk has %d columns, schema has %d", len(chunk.ColumnTypes()), len(t.columns))
	}

	start := t.group.totalRows
	t.group.reserve(n)

	for i := 0; i < n; i++ {
		rowID := start + int64(i)
		seg, offset := t.group.segmentFor(rowID)
		vals := make([]types.Value, len(t.columns))
		for c := range t.columns {
			vals[c] = chunk.GetValue(c, i)
		}
		seg.writeRow(offset, vals)
	}
	t.markInserted(start, n, txn, direct)
	t.group.totalRows += int64(n)
	return start, nil
}

// markInserted tags the version chain(s) covering [start, start+n)
// pending-by-txn or committed-at-cid, splitting across segment
// boundaries as needed.
func (t *Table) markInserted(start int64, n int, txn mvcc.Transaction, direct bool) {
	remaining := n
	row := start
	for remaining > 0 {
		seg, offset := t.group.segmentFor(row)
		run := SegmentSize - offset
		if run > remaining {
			run = remaining
		}
		if direct {
			seg.chain.AppendCommitted(offset, run, txn.CommitID)
		} else {
			seg.chain.AppendPending(offset, run, txn.ID)
		}
		row += int64(run)
		remaining -= run
	}
}

// CommitAppend finalizes a pending append, moving [start, start+count)
// from pending-by-txn to committed-at-cid.
func (t *Table) CommitAppend(cid, start int64, count int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.forEachSpan(start, count, func(seg *Segment, offset, run int) {
		seg.chain.CommitAppend(offset, run, cid)
	})
}

// RevertAppend erases a pending append's version slots entirely.
func (t *Table) RevertAppend(start int64, count int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.forEachSpan(start, count, func(seg *Segment, offset, run int) {
		seg.chain.RevertAppend(offset, run)
	})
}

func (t *Table) forEachSpan(start int64, count int, fn func(seg *Segment, offset, run int)) error {
	remaining := count
	row := start
	for remaining > 0 {
		if row < 0 || row >= t.group.totalRows {
			return fmt.Errorf("table: row id %d out of range", row)
		}
		seg, offset := t.group.segmentFor(row)
		run := SegmentSize - offset
		if run > remaining {
			run = remaining
		}
		fn(seg, offset, run)
		row += int64(run)
		remaining -= run
	}
	return nil
}

// DeleteRows marks ids as deleted, pending under txn (or, if
// txn.ID == 0, committed directly at txn.CommitID — the
// non-transactional delete path). It returns the count of rows
// actually marked, skipping ones already under any delete.
func (t *Table) DeleteRows(ids []int64, txn mvcc.Transaction) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bySeg := map[*Segment][]int{}
	for _, id := range ids {
		if id < 0 || id >= t.group.totalRows {
			return 0, fmt.Errorf("table: row id %d out of range", id)
		}
		seg, offset := t.group.segmentFor(id)
		bySeg[seg] = append(bySeg[seg], offset)
	}
	total := 0
	for seg, offsets := range bySeg {
		total += seg.chain.DeleteRows(offsets, txn.ID, txn.CommitID)
	}
	return total, nil
}

// CommitAllDeletes finalizes every row pending-delete under txn.ID,
// moving them to committed-delete at cid.
func (t *Table) CommitAllDeletes(txnID, cid int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, seg := range t.group.segments {
		seg.chain.CommitAllDeletes(txnID, cid)
	}
}

// RevertDeletes clears every pending-delete mark left by txnID.
func (t *Table) RevertDeletes(txnID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, seg := range t.group.segments {
		seg.chain.RevertDeletes(txnID)
	}
}

// Update overwrites, in place, the cell values of each row named by
// oldIDs with the matching row of newChunk, keeping the row's original
// physical id stable across the update (§3.3, §4.2: "IDs are stable
// across updates"; scenario 4 of §8). The version chain's insert/delete
// record for the slot is left untouched, since the row's commit
// history does not change, only its cell contents — a slot in this
// engine carries exactly one cell version at a time, so there is no
// separate pending-value state to stage before commit. It returns the
// rows' previous values, with their ids intact, so the caller can
// restore them with Restore if the enclosing transaction reverts.
func (t *Table) Update(oldIDs []int64, newChunk *vector.Chunk, txn mvcc.Transaction) (*vector.Chunk, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.schemaless {
		return nil, fmt.Errorf("table: cannot update before schema adoption")
	}
	if newChunk.Cardinality() != len(oldIDs) {
		return nil, fmt.Errorf("table: update needs one new row per old id, got %d ids and %d rows", len(oldIDs), newChunk.Cardinality())
	}
	if len(newChunk.ColumnTypes()) != len(t.columns) {
		return nil, fmt.Errorf("table: chunk has %d columns, schema has %d", len(newChunk.ColumnTypes()), len(t.columns))
	}

	colTypes := make([]types.ComplexLogicalType, len(t.columns))
	for i, c := range t.columns {
		colTypes[i] = c.Type
	}
	prior := vector.NewChunk(t.arena, colTypes, len(oldIDs))
	for i, id := range oldIDs {
		if id < 0 || id >= t.group.totalRows {
			return nil, fmt.Errorf("table: row id %d out of range", id)
		}
		seg, offset := t.group.segmentFor(id)
		if !seg.chain.Visible(offset, txn) {
			return nil, fmt.Errorf("table: row id %d not visible to updating transaction", id)
		}

		for c := range t.columns {
			prior.SetValue(c, i, seg.chunk.GetValue(c, offset))
		}
		prior.RowIDs.SetValue(i, types.NewInt(types.BIGINT, id))
		prior.SetCardinality(i + 1)

		vals := make([]types.Value, len(t.columns))
		for c := range t.columns {
			vals[c] = newChunk.GetValue(c, i)
		}
		seg.writeRow(offset, vals)
	}
	return prior, nil
}

// Restore writes prior's rows back into their original slots (named by
// prior.RowIDs), undoing an Update whose transaction reverted.
func (t *Table) Restore(prior *vector.Chunk) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < prior.Cardinality(); i++ {
		id := prior.RowIDs.GetValue(i).AsInt64()
		if id < 0 || id >= t.group.totalRows {
			return fmt.Errorf("table: row id %d out of range", id)
		}
		seg, offset := t.group.segmentFor(id)
		vals := make([]types.Value, len(t.columns))
		for c := range t.columns {
			vals[c] = prior.GetValue(c, i)
		}
		seg.writeRow(offset, vals)
	}
	return nil
}

// Scan appends to out every row visible under txn, in row-id order,
// applying filter (if non-nil) and stopping once out holds limit
// visible rows (limit <= 0 means unbounded).
func (t *Table) Scan(out *vector.Chunk, filter func(row []types.Value) bool, limit int, txn mvcc.Transaction) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for segIdx, seg := range t.group.segments {
		for offset := 0; offset < seg.used; offset++ {
			if limit > 0 && count >= limit {
				return nil
			}
			if !seg.chain.Visible(offset, txn) {
				continue
			}
			row := make([]types.Value, len(t.columns))
			for c := range t.columns {
				row[c] = seg.chunk.GetValue(c, offset)
			}
			if filter != nil && !filter(row) {
				continue
			}
			rowID := int64(segIdx)*SegmentSize + int64(offset)
			dest := out.Cardinality()
			for c, v := range row {
				out.SetValue(c, dest, v)
			}
			out.RowIDs.SetValue(dest, types.NewInt(types.BIGINT, rowID))
			out.SetCardinality(dest + 1)
			count++
		}
	}
	return nil
}

// Fetch returns the rows named by ids, in order, with no MVCC
// filtering — used by index lookups that already know the physical
// row id is live.
func (t *Table) Fetch(out *vector.Chunk, ids []int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		if id < 0 || id >= t.group.totalRows {
			return fmt.Errorf("table: row id %d out of range", id)
		}
		seg, offset := t.group.segmentFor(id)
		dest := out.Cardinality()
		for c := range t.columns {
			out.SetValue(c, dest, seg.chunk.GetValue(c, offset))
		}
		out.RowIDs.SetValue(dest, types.NewInt(types.BIGINT, id))
		out.SetCardinality(dest + 1)
	}
	return nil
}

// ScanSegment performs a physical, non-MVCC scan of [start, start+count)
// row ids, invoking cb with each populated segment's chunk view. cb
// returning false stops the scan early.
func (t *Table) ScanSegment(start int64, count int, cb func(chunk *vector.Chunk) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	remaining := count
	row := start
	for remaining > 0 {
		if row >= t.group.totalRows {
			return nil
		}
		seg, offset := t.group.segmentFor(row)
		run := seg.used - offset
		if run <= 0 {
			return nil
		}
		if run > remaining {
			run = remaining
		}
		view := seg.chunk.Slice(offset, run)
		if !cb(view) {
			return nil
		}
		row += int64(run)
		remaining -= run
	}
	return nil
}

// CleanupVersions runs mvcc.Chain.Cleanup over every segment, GC'ing
// version history no longer needed by any reader at or after
// lowestActiveStart.
func (t *Table) CleanupVersions(lowestActiveStart int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	reclaimed := 0
	for _, seg := range t.group.segments {
		reclaimed += seg.chain.Cleanup(lowestActiveStart)
	}
	return reclaimed
}

// DeletedRatio returns the fraction of ever-assigned rows currently
// carrying a committed delete, the input to maybe_cleanup's 30%
// threshold (§4.3).
func (t *Table) DeletedRatio() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.group.totalRows == 0 {
		return 0
	}
	deleted := 0
	for _, seg := range t.group.segments {
		deleted += seg.chain.CommittedDeletedCount()
	}
	return float64(deleted) / float64(t.group.totalRows)
}

// Compact rewrites the row group, physically dropping every row under
// a committed delete and repacking survivors into fresh, densely
// numbered segments. It does not wait for or check active
// transactions: a row still pending insert is dropped, and a row still
// pending delete is kept as committed without its delete mark.
func (t *Table) Compact() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	colTypes := make([]types.ComplexLogicalType, len(t.columns))
	for i, c := range t.columns {
		colTypes[i] = c.Type
	}
	fresh := newRowGroup(t.arena, colTypes)
	for _, seg := range t.group.segments {
		for offset := 0; offset < seg.used; offset++ {
			// A row survives compaction only if a reader that sees every
			// commit would see it: slots under a committed delete, and
			// slots that carry no row (never written, reverted, or
			// reclaimed by CleanupVersions), are dropped.
			if seg.chain.IsTombstoned(offset) || !seg.chain.Visible(offset, mvcc.Passive(1<<62)) {
				continue
			}
			vals := make([]types.Value, len(t.columns))
			for c := range t.columns {
				vals[c] = seg.chunk.GetValue(c, offset)
			}
			newRowID := fresh.totalRows
			fresh.reserve(1)
			newSeg, newOffset := fresh.segmentFor(newRowID)
			newSeg.writeRow(newOffset, vals)
			newSeg.chain.AppendCommitted(newOffset, 1, 1)
			fresh.totalRows++
		}
	}
	t.group = fresh
	return nil
}

// MetaWriter receives a Table's serialized layout descriptor at a
// durability point (§4.1 checkpoint).
type MetaWriter interface {
	WriteMeta(meta []byte) error
}

// Checkpoint writes a compact layout descriptor (row/segment/column
// counts) through w. Full page-level persistence is the storagemgr
// package's responsibility, which pairs this with a buffer.Pool
// flush; Table itself stays storage-backend agnostic.
func (t *Table) Checkpoint(w MetaWriter) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	meta := encodeTableMeta(t.group.totalRows, int64(t.group.segmentCount()), int64(len(t.columns)))
	return w.WriteMeta(meta)
}
