package storagemgr

import (
	"fmt"

	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/table"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

// Append runs the §4.3 acceptance pipeline over chunk and, if any rows
// survive, hands them to the table as an implicit, immediately
// committed write (the non-transactional append path). It returns the
// assigned start row and the count of rows actually accepted; a
// non-empty input that is entirely rejected by NOT NULL or dedup
// yields (0, 0, nil), not an error (§4.3, §7).
func (m *Manager) Append(name string, chunk *vector.Chunk, cid int64) (int64, int, error) {
	return m.appendCommon(name, chunk, mvcc.Transaction{CommitID: cid}, true)
}

// AppendTxn is Append's transactional counterpart: accepted rows are
// tagged pending-insert by txn.ID. The caller must later commit or
// revert with the returned (start, count) exactly as for table.Table.
func (m *Manager) AppendTxn(name string, chunk *vector.Chunk, txn mvcc.Transaction) (int64, int, error) {
	return m.appendCommon(name, chunk, txn, false)
}

func (m *Manager) appendCommon(name string, chunk *vector.Chunk, txn mvcc.Transaction, direct bool) (int64, int, error) {
	m.mu.Lock()
	e, ok := m.entries[name]
	m.mu.Unlock()
	if !ok {
		return 0, 0, fmt.Errorf("storagemgr: %q not found", name)
	}

	accepted, err := m.acceptChunk(e, chunk)
	if err != nil {
		return 0, 0, err
	}
	if accepted == nil || accepted.Cardinality() == 0 {
		return 0, 0, nil
	}

	var start int64
	if direct {
		start, err = e.Table.Append(accepted, txn.CommitID)
	} else {
		start, err = e.Table.AppendTxn(accepted, txn)
	}
	if err != nil {
		return 0, 0, err
	}
	return start, accepted.Cardinality(), nil
}

// acceptChunk runs the full five-step pipeline (§4.3) and returns the
// chunk ready for table.Table.Append/AppendTxn, or a nil/zero-row
// chunk if every incoming row was rejected.
func (m *Manager) acceptChunk(e *Entry, in *vector.Chunk) (*vector.Chunk, error) {
	// 1. Schema adoption.
	if e.Table.IsSchemaless() {
		cols := make([]ColumnSchema, len(in.Columns))
		for i, v := range in.Columns {
			cols[i] = ColumnSchema{Name: v.Type.Alias, Type: v.Type}
		}
		if err := e.Table.AdoptSchema(schemaToColumnDefs(cols)); err != nil {
			return nil, err
		}
		e.Columns = cols
	}

	// 2. Column expansion: reorder/expand incoming columns by alias to
	// the table's schema order.
	expanded, err := m.expandColumns(e, in)
	if err != nil {
		return nil, err
	}
	n := expanded.Cardinality()
	if n == 0 {
		return expanded, nil
	}

	// 3. NOT NULL check: any violation rejects the whole chunk.
	for col, schema := range e.Columns {
		if !schema.NotNull {
			continue
		}
		for row := 0; row < n; row++ {
			if expanded.GetValue(col, row).IsNull() {
				return nil, nil
			}
		}
	}

	// 4. Dedup on _id.
	expanded = m.dedupOnID(e, expanded)
	n = expanded.Cardinality()
	if n == 0 {
		return expanded, nil
	}

	// 5. Type promotion.
	m.promoteTypes(e, expanded)

	return expanded, nil
}

// expandColumns builds a chunk shaped like e.Columns from in, matching
// incoming columns to target columns by alias. A target column with
// no matching incoming column is filled with its DEFAULT (if any) or
// all-null; an incoming column with no matching target is dropped.
func (m *Manager) expandColumns(e *Entry, in *vector.Chunk) (*vector.Chunk, error) {
	n := in.Cardinality()
	byAlias := make(map[string]int, len(in.Columns))
	for i, v := range in.Columns {
		byAlias[v.Type.Alias] = i
	}

	colTypes := make([]types.ComplexLogicalType, len(e.Columns))
	for i, c := range e.Columns {
		colTypes[i] = c.Type.WithAlias(c.Name)
	}
	out := vector.NewChunk(m.arena, colTypes, n)
	out.SetCardinality(n)

	for col, schema := range e.Columns {
		srcIdx, present := byAlias[schema.Name]
		for row := 0; row < n; row++ {
			switch {
			case present:
				out.SetValue(col, row, in.GetValue(srcIdx, row))
			case schema.Default != nil:
				out.SetValue(col, row, *schema.Default)
			default:
				out.Columns[col].SetNull(row)
			}
		}
	}
	for row := 0; row < n; row++ {
		out.RowIDs.SetValue(row, in.RowIDs.GetValue(row))
	}
	return out, nil
}

// dedupOnID drops rows whose _id already exists in e.Table, comparing
// by the value's string view so a numeric or composite _id dedups the
// same as a string one (§4.3 step 4).
func (m *Manager) dedupOnID(e *Entry, in *vector.Chunk) *vector.Chunk {
	idCol := -1
	for i, c := range e.Columns {
		if c.Name == "_id" {
			idCol = i
			break
		}
	}
	if idCol < 0 || e.Table.TotalRows() == 0 {
		return in
	}

	existing := make(map[string]struct{})
	scanBuf := vector.NewChunk(m.arena, columnTypesOf(e.Columns), int(e.Table.TotalRows())+1)
	_ = e.Table.Scan(scanBuf, nil, 0, mvcc.Passive(1<<62))
	for row := 0; row < scanBuf.Cardinality(); row++ {
		existing[scanBuf.GetValue(idCol, row).String()] = struct{}{}
	}

	n := in.Cardinality()
	colTypes := in.ColumnTypes()
	out := vector.NewChunk(m.arena, colTypes, n)
	dest := 0
	seenThisBatch := make(map[string]struct{})
	for row := 0; row < n; row++ {
		key := in.GetValue(idCol, row).String()
		if _, dup := existing[key]; dup {
			continue
		}
		if _, dup := seenThisBatch[key]; dup {
			continue
		}
		seenThisBatch[key] = struct{}{}
		for col := range colTypes {
			out.SetValue(col, dest, in.GetValue(col, row))
		}
		out.RowIDs.SetValue(dest, in.RowIDs.GetValue(row))
		dest++
	}
	out.SetCardinality(dest)
	return out
}

// promoteTypes casts every cell whose runtime value type differs from
// its column's declared type, when both are numeric or both are
// string-like; an unconvertible source becomes null (§4.3 step 5).
func (m *Manager) promoteTypes(e *Entry, chunk *vector.Chunk) {
	for col, schema := range e.Columns {
		target := schema.Type
		for row := 0; row < chunk.Cardinality(); row++ {
			v := chunk.GetValue(col, row)
			if v.IsNull() || v.Type().Equal(target) {
				continue
			}
			numToNum := v.Type().Tag.IsNumeric() && target.Tag.IsNumeric()
			strToStr := (v.Type().Tag == types.STRING_LITERAL || v.Type().Tag == types.BLOB) &&
				(target.Tag == types.STRING_LITERAL || target.Tag == types.BLOB)
			if numToNum || strToStr {
				chunk.SetValue(col, row, types.CastAs(m.arena, v, target))
			}
		}
	}
}

func columnTypesOf(cols []ColumnSchema) []types.ComplexLogicalType {
	out := make([]types.ComplexLogicalType, len(cols))
	for i, c := range cols {
		out[i] = c.Type.WithAlias(c.Name)
	}
	return out
}

func schemaToColumnDefs(cols []ColumnSchema) []table.ColumnDef {
	defs := make([]table.ColumnDef, len(cols))
	for i, c := range cols {
		defs[i] = table.ColumnDef{Name: c.Name, Type: c.Type}
	}
	return defs
}

// Update runs the acceptance pipeline over newChunk (schema expansion,
// NOT NULL, type promotion — dedup is skipped since oldIDs already
// identify the rows being replaced) and then delegates to
// table.Table.Update, which overwrites oldIDs' cells in place without
// disturbing their physical row ids (§4.2, §3.3). It returns the rows'
// previous values, ids intact, or a nil chunk if newChunk was entirely
// rejected by a NOT NULL violation, so the caller can tell "nothing
// updated" apart from an error.
func (m *Manager) Update(name string, oldIDs []int64, newChunk *vector.Chunk, txn mvcc.Transaction) (*vector.Chunk, error) {
	m.mu.Lock()
	e, ok := m.entries[name]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("storagemgr: %q not found", name)
	}
	expanded, err := m.expandColumns(e, newChunk)
	if err != nil {
		return nil, err
	}
	for col, schema := range e.Columns {
		if !schema.NotNull {
			continue
		}
		for row := 0; row < expanded.Cardinality(); row++ {
			if expanded.GetValue(col, row).IsNull() {
				return nil, nil
			}
		}
	}
	m.promoteTypes(e, expanded)
	return e.Table.Update(oldIDs, expanded, txn)
}

// RestoreRows undoes an Update whose transaction reverted, writing
// prior's rows back into their original slots on the named table.
func (m *Manager) RestoreRows(name string, prior *vector.Chunk) error {
	e, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	return e.Table.Restore(prior)
}

// DeleteRows delegates to the named table's delete path (§4.2).
func (m *Manager) DeleteRows(name string, ids []int64, txn mvcc.Transaction) (int, error) {
	e, ok := m.Get(name)
	if !ok {
		return 0, fmt.Errorf("storagemgr: %q not found", name)
	}
	return e.Table.DeleteRows(ids, txn)
}

// Scan delegates to the named table's MVCC-filtered scan (§4.2).
func (m *Manager) Scan(name string, out *vector.Chunk, filter func([]types.Value) bool, limit int, txn mvcc.Transaction) error {
	e, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	return e.Table.Scan(out, filter, limit, txn)
}

// Fetch delegates to the named table's non-MVCC row fetch, used by
// index lookups (§4.2).
func (m *Manager) Fetch(name string, out *vector.Chunk, ids []int64) error {
	e, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	return e.Table.Fetch(out, ids)
}

// CommitAppend finalizes a pending append on the named table.
func (m *Manager) CommitAppend(name string, cid, start int64, count int) error {
	e, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	return e.Table.CommitAppend(cid, start, count)
}

// RevertAppend reverts a pending append on the named table.
func (m *Manager) RevertAppend(name string, start int64, count int) error {
	e, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	return e.Table.RevertAppend(start, count)
}

// CommitDelete finalizes every row pending-delete under txnID on the
// named table.
func (m *Manager) CommitDelete(name string, txnID, cid int64) error {
	e, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	e.Table.CommitAllDeletes(txnID, cid)
	return nil
}

// RevertDelete clears every pending-delete mark left by txnID on the
// named table.
func (m *Manager) RevertDelete(name string, txnID int64) error {
	e, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	e.Table.RevertDeletes(txnID)
	return nil
}

// StorageTypes returns the declared column types of the named
// collection, in schema order.
func (m *Manager) StorageTypes(name string) ([]types.ComplexLogicalType, error) {
	e, ok := m.Get(name)
	if !ok {
		return nil, fmt.Errorf("storagemgr: %q not found", name)
	}
	return columnTypesOf(e.Columns), nil
}

// StorageTotalRows returns the named collection's total assigned row
// count (including uncompacted tombstones).
func (m *Manager) StorageTotalRows(name string) (int64, error) {
	e, ok := m.Get(name)
	if !ok {
		return 0, fmt.Errorf("storagemgr: %q not found", name)
	}
	return e.Table.TotalRows(), nil
}
