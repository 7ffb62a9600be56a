package table

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

func newTestTable(arena *types.Arena) *Table {
	return NewTable(arena, []ColumnDef{
		{Name: "_id", Type: types.Simple(types.STRING_LITERAL)},
		{Name: "n", Type: types.Simple(types.INTEGER)},
	})
}

func chunkOf(arena *types.Arena, id string, n int64) *vector.Chunk {
	c := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL), types.Simple(types.INTEGER),
	}, 1)
	c.SetValue(0, 0, types.NewString(arena, id))
	c.SetValue(1, 0, types.NewInt(types.INTEGER, n))
	c.SetCardinality(1)
	return c
}

func TestAppendAssignsSequentialRowIDs(t *testing.T) {
	arena := types.NewArena("test")
	tbl := newTestTable(arena)
	s0, _ := tbl.Append(chunkOf(arena, "a", 1), 1)
	s1, _ := tbl.Append(chunkOf(arena, "b", 2), 1)
	if s0 != 0 || s1 != 1 {
		t.Errorf("row ids = %d, %d, want 0, 1", s0, s1)
	}
}

func TestScanVisibilityUnderTxn(t *testing.T) {
	arena := types.NewArena("test")
	tbl := newTestTable(arena)
	txn := mvcc.Transaction{ID: 5, StartTime: 10}
	start, err := tbl.AppendTxn(chunkOf(arena, "a", 1), txn)
	if err != nil {
		t.Fatal(err)
	}

	out := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL), types.Simple(types.INTEGER),
	}, 4)
	other := mvcc.Passive(10)
	if err := tbl.Scan(out, nil, 0, other); err != nil {
		t.Fatal(err)
	}
	if out.Cardinality() != 0 {
		t.Fatal("uncommitted insert must not be visible to another transaction")
	}

	if err := tbl.Scan(out, nil, 0, txn); err != nil {
		t.Fatal(err)
	}
	if out.Cardinality() != 1 {
		t.Fatal("inserting transaction should see its own pending row")
	}

	if err := tbl.CommitAppend(20, start, 1); err != nil {
		t.Fatal(err)
	}
	out2 := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL), types.Simple(types.INTEGER),
	}, 4)
	reader := mvcc.Passive(20)
	if err := tbl.Scan(out2, nil, 0, reader); err != nil {
		t.Fatal(err)
	}
	if out2.Cardinality() != 1 {
		t.Fatal("reader at or after commit cid should see the committed row")
	}
}

func TestDeleteAndCommit(t *testing.T) {
	arena := types.NewArena("test")
	tbl := newTestTable(arena)
	tbl.Append(chunkOf(arena, "a", 1), 1)

	txn := mvcc.Transaction{ID: 3, StartTime: 5}
	n, err := tbl.DeleteRows([]int64{0}, txn)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("deleted count = %d, want 1", n)
	}
	tbl.CommitAllDeletes(3, 6)

	out := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL), types.Simple(types.INTEGER),
	}, 4)
	reader := mvcc.Passive(10)
	if err := tbl.Scan(out, nil, 0, reader); err != nil {
		t.Fatal(err)
	}
	if out.Cardinality() != 0 {
		t.Fatal("committed-deleted row should not be visible")
	}
}

func TestFetchBypassesMVCC(t *testing.T) {
	arena := types.NewArena("test")
	tbl := newTestTable(arena)
	tbl.Append(chunkOf(arena, "a", 1), 1)
	txn := mvcc.Transaction{ID: 9}
	tbl.DeleteRows([]int64{0}, txn) // pending delete, not committed

	out := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL), types.Simple(types.INTEGER),
	}, 4)
	if err := tbl.Fetch(out, []int64{0}); err != nil {
		t.Fatal(err)
	}
	if out.Cardinality() != 1 {
		t.Fatal("fetch must return rows regardless of pending delete state")
	}
}

func TestCompactDropsTombstones(t *testing.T) {
	arena := types.NewArena("test")
	tbl := newTestTable(arena)
	tbl.Append(chunkOf(arena, "a", 1), 1)
	tbl.Append(chunkOf(arena, "b", 2), 1)
	tbl.DeleteRows([]int64{0}, mvcc.Transaction{ID: 0, CommitID: 2})

	if err := tbl.Compact(); err != nil {
		t.Fatal(err)
	}
	if tbl.TotalRows() != 1 {
		t.Fatalf("total rows after compact = %d, want 1", tbl.TotalRows())
	}
}

// TestUpdateKeepsRowID reproduces spec scenario 4: a row keeps its
// physical id across an update, scan surfaces the new value under
// that id, and fetch by the same id returns exactly one row.
func TestUpdateKeepsRowID(t *testing.T) {
	arena := types.NewArena("test")
	tbl := newTestTable(arena)
	var lastID int64
	for i := int64(0); i < 8; i++ {
		lastID, _ = tbl.Append(chunkOf(arena, "row", i+1), 1)
	}
	if lastID != 7 {
		t.Fatalf("last row id = %d, want 7", lastID)
	}

	newChunk := chunkOf(arena, "row", 2)
	txn := mvcc.Transaction{ID: 0, CommitID: 2, StartTime: 1}
	if _, err := tbl.Update([]int64{7}, newChunk, txn); err != nil {
		t.Fatal(err)
	}

	out := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL), types.Simple(types.INTEGER),
	}, 16)
	if err := tbl.Scan(out, nil, 0, mvcc.Passive(10)); err != nil {
		t.Fatal(err)
	}
	if out.Cardinality() != 8 {
		t.Fatalf("scan cardinality = %d, want 8 (update must not change row count)", out.Cardinality())
	}
	found := false
	for row := 0; row < out.Cardinality(); row++ {
		if out.RowIDs.GetValue(row).AsInt64() != 7 {
			continue
		}
		found = true
		if got := out.GetValue(1, row).AsInt64(); got != 2 {
			t.Errorf("row 7's n = %d, want 2", got)
		}
	}
	if !found {
		t.Fatal("row id 7 missing from scan after update")
	}

	fetchOut := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL), types.Simple(types.INTEGER),
	}, 4)
	if err := tbl.Fetch(fetchOut, []int64{7}); err != nil {
		t.Fatal(err)
	}
	if fetchOut.Cardinality() != 1 {
		t.Fatalf("fetch([7]) cardinality = %d, want 1", fetchOut.Cardinality())
	}
	if got := fetchOut.GetValue(1, 0).AsInt64(); got != 2 {
		t.Errorf("fetch([7]).n = %d, want 2", got)
	}
}

// TestUpdateRestoreUndoesInPlaceWrite verifies Restore, the revert-side
// counterpart of Update, puts the row's previous cell values back.
func TestUpdateRestoreUndoesInPlaceWrite(t *testing.T) {
	arena := types.NewArena("test")
	tbl := newTestTable(arena)
	id, _ := tbl.Append(chunkOf(arena, "a", 1), 1)

	txn := mvcc.Transaction{ID: 4, StartTime: 5}
	prior, err := tbl.Update([]int64{id}, chunkOf(arena, "a", 99), txn)
	if err != nil {
		t.Fatal(err)
	}

	out := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL), types.Simple(types.INTEGER),
	}, 4)
	if err := tbl.Fetch(out, []int64{id}); err != nil {
		t.Fatal(err)
	}
	if got := out.GetValue(1, 0).AsInt64(); got != 99 {
		t.Fatalf("n after update = %d, want 99", got)
	}

	if err := tbl.Restore(prior); err != nil {
		t.Fatal(err)
	}
	out2 := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL), types.Simple(types.INTEGER),
	}, 4)
	if err := tbl.Fetch(out2, []int64{id}); err != nil {
		t.Fatal(err)
	}
	if got := out2.GetValue(1, 0).AsInt64(); got != 1 {
		t.Errorf("n after restore = %d, want 1 (original value)", got)
	}
}

func TestDeletedRatio(t *testing.T) {
	arena := types.NewArena("test")
	tbl := newTestTable(arena)
	tbl.Append(chunkOf(arena, "a", 1), 1)
	tbl.Append(chunkOf(arena, "b", 2), 1)
	tbl.DeleteRows([]int64{0}, mvcc.Transaction{ID: 0, CommitID: 2})
	if got := tbl.DeletedRatio(); got != 0.5 {
		t.Errorf("deleted ratio = %v, want 0.5", got)
	}
}
