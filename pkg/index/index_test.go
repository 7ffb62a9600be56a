package index

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/predicate"
	"github.com/cuemby/quilldb/pkg/types"
)

func intVal(n int64) types.Value { return types.NewInt(types.INTEGER, n) }

func TestSearchDispatchTable(t *testing.T) {
	ix := New("by_x", NewKeySchema("x"))
	reader := mvcc.Passive(100)
	direct := mvcc.Transaction{ID: 0, CommitID: 10}

	ix.Insert(intVal(1), 1, direct)
	ix.Insert(intVal(2), 2, direct)
	ix.Insert(intVal(2), 3, direct)
	ix.Insert(intVal(3), 4, direct)

	cases := []struct {
		op   predicate.CompareOp
		want []int64
	}{
		{predicate.Eq, []int64{2, 3}},
		{predicate.Ne, []int64{1, 4}},
		{predicate.Gt, []int64{4}},
		{predicate.Gte, []int64{2, 3, 4}},
		{predicate.Lt, []int64{1}},
		{predicate.Lte, []int64{1, 2, 3}},
	}
	for _, c := range cases {
		got := ix.Search(c.op, intVal(2), reader)
		if !sameIDs(got, c.want) {
			t.Errorf("op %v: got %v, want %v", c.op, got, c.want)
		}
	}
}

func TestInsertPendingNotVisibleToOthers(t *testing.T) {
	ix := New("by_x", NewKeySchema("x"))
	txn := mvcc.Transaction{ID: 7, StartTime: 10}
	other := mvcc.Transaction{ID: 8, StartTime: 10}

	ix.Insert(intVal(5), 1, txn)

	if got := ix.Search(predicate.Eq, intVal(5), txn); !sameIDs(got, []int64{1}) {
		t.Errorf("inserting transaction must see its own pending insert, got %v", got)
	}
	if got := ix.Search(predicate.Eq, intVal(5), other); len(got) != 0 {
		t.Errorf("a pending insert must be invisible to other transactions, got %v", got)
	}
}

func TestCommitInsertMovesToCommittedStore(t *testing.T) {
	ix := New("by_x", NewKeySchema("x"))
	txn := mvcc.Transaction{ID: 7, StartTime: 10}

	ix.Insert(intVal(5), 1, txn)
	ops := ix.CommitInsert(mvcc.Transaction{ID: 7, CommitID: 20})
	if len(ops) != 1 || ops[0].RowID != 1 {
		t.Fatalf("expected one disk op for row 1, got %v", ops)
	}

	before := mvcc.Passive(15)
	after := mvcc.Passive(20)
	if got := ix.Search(predicate.Eq, intVal(5), before); len(got) != 0 {
		t.Errorf("reader started before commit must not see the row, got %v", got)
	}
	if got := ix.Search(predicate.Eq, intVal(5), after); !sameIDs(got, []int64{1}) {
		t.Errorf("reader started at or after commit must see the row, got %v", got)
	}
}

func TestRevertInsertDropsPending(t *testing.T) {
	ix := New("by_x", NewKeySchema("x"))
	txn := mvcc.Transaction{ID: 7, StartTime: 10}
	ix.Insert(intVal(5), 1, txn)
	ix.RevertInsert(7)

	if got := ix.Search(predicate.Eq, intVal(5), txn); len(got) != 0 {
		t.Errorf("reverted insert must not be visible, got %v", got)
	}
}

// TestUpdateKeepsRowIDIndexAgreement is scenario 4 (§8): updating a
// row's indexed column must make the index agree with the new value
// and stop reporting the old one, without changing the row id.
func TestUpdateKeepsRowIDIndexAgreement(t *testing.T) {
	ix := New("by_x", NewKeySchema("x"))
	direct := mvcc.Transaction{ID: 0, CommitID: 1}
	ix.Insert(intVal(1), 7, direct)

	txn := mvcc.Transaction{ID: 3, StartTime: 50}
	ix.MarkDelete(intVal(1), 7, txn)
	ix.Insert(intVal(2), 7, txn)

	commit := mvcc.Transaction{ID: 3, CommitID: 60}
	ix.CommitDelete(commit)
	ix.CommitInsert(commit)

	reader := mvcc.Passive(60)
	if got := ix.Search(predicate.Eq, intVal(2), reader); !sameIDs(got, []int64{7}) {
		t.Errorf("search(eq, 2) must contain row 7 after update, got %v", got)
	}
	if got := ix.Search(predicate.Eq, intVal(1), reader); len(got) != 0 {
		t.Errorf("search(eq, 1) must no longer contain row 7 after update, got %v", got)
	}
}

func TestMarkDeletePendingStaysVisibleToOthers(t *testing.T) {
	ix := New("by_x", NewKeySchema("x"))
	ix.Insert(intVal(5), 1, mvcc.Transaction{ID: 0, CommitID: 1})

	deleter := mvcc.Transaction{ID: 9, StartTime: 50}
	other := mvcc.Transaction{ID: 10, StartTime: 50}
	ix.MarkDelete(intVal(5), 1, deleter)

	if got := ix.Search(predicate.Eq, intVal(5), deleter); len(got) != 0 {
		t.Errorf("deleting transaction must not see its own pending delete, got %v", got)
	}
	if got := ix.Search(predicate.Eq, intVal(5), other); !sameIDs(got, []int64{1}) {
		t.Errorf("a pending delete must stay visible to other readers until commit, got %v", got)
	}
}

func TestEngineDispatchesByKeySchema(t *testing.T) {
	arena := types.NewArena("test")
	eng := NewEngine(arena, "db.users")
	if _, err := eng.CreateIndex("by_x", NewKeySchema("x")); err != nil {
		t.Fatal(err)
	}

	colTypes := []types.ComplexLogicalType{
		{Tag: types.INTEGER, Alias: "x"},
		{Tag: types.INTEGER, Alias: "y"},
	}
	row := []types.Value{intVal(42), intVal(99)}
	txn := mvcc.Transaction{ID: 0, CommitID: 1}
	eng.InsertRow(colTypes, row, 3, txn)

	got, err := eng.Search("by_x", predicate.Eq, intVal(42), mvcc.Passive(1))
	if err != nil {
		t.Fatal(err)
	}
	if !sameIDs(got, []int64{3}) {
		t.Errorf("expected row 3, got %v", got)
	}
}

func sameIDs(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[int64]bool, len(got))
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			return false
		}
	}
	return true
}
