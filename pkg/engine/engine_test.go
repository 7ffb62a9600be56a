package engine

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/predicate"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

func widgetColumns() []ColumnSchemaArg {
	return []ColumnSchemaArg{
		{Name: "_id", Type: types.Simple(types.STRING_LITERAL), NotNull: true},
		{Name: "price", Type: types.Simple(types.INTEGER)},
	}
}

func widgetChunk(arena *types.Arena, id string, price int64) *vector.Chunk {
	c := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL).WithAlias("_id"),
		types.Simple(types.INTEGER).WithAlias("price"),
	}, 1)
	c.SetValue(0, 0, types.NewString(arena, id))
	c.SetValue(1, 0, types.NewInt(types.INTEGER, price))
	c.SetCardinality(1)
	return c
}

func TestCreateAppendCommitSearch(t *testing.T) {
	dir := t.TempDir()
	arena := types.NewArena("test")
	e, err := Open(dir, arena)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if err := e.CreateDatabaseTxn("main"); err != nil {
		t.Fatal(err)
	}
	if err := e.CreateCollectionPublic("main", "widgets", widgetColumns(), true); err != nil {
		t.Fatal(err)
	}
	if err := e.CreateIndexTxn("main", "widgets", "by_id", [][]string{{"_id"}}); err != nil {
		t.Fatal(err)
	}

	txn := e.Begin()
	if _, _, err := e.Append(txn, "main", "widgets", widgetChunk(arena, "w1", 100)); err != nil {
		t.Fatal(err)
	}
	if err := e.Commit(txn); err != nil {
		t.Fatal(err)
	}

	col, err := e.getCollection("main", "widgets")
	if err != nil {
		t.Fatal(err)
	}
	ids, err := col.indexes.Search("by_id", predicate.Eq, types.NewString(arena, "w1"), e.ReadTxn())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 0 {
		t.Fatalf("search by_id = %v, want [0]", ids)
	}
}

func TestWALReplaySurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	arena := types.NewArena("test")

	e, err := Open(dir, arena)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.CreateDatabaseTxn("main"); err != nil {
		t.Fatal(err)
	}
	if err := e.CreateCollectionPublic("main", "widgets", widgetColumns(), true); err != nil {
		t.Fatal(err)
	}
	txn := e.Begin()
	if _, _, err := e.Append(txn, "main", "widgets", widgetChunk(arena, "w1", 100)); err != nil {
		t.Fatal(err)
	}
	if err := e.Commit(txn); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	arena2 := types.NewArena("test2")
	e2, err := Open(dir, arena2)
	if err != nil {
		t.Fatal(err)
	}
	defer e2.Close()

	total, err := e2.StorageTotalRows("main", "widgets")
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("total rows after reopen = %d, want 1", total)
	}
}

func TestRevertDropsPendingAppend(t *testing.T) {
	dir := t.TempDir()
	arena := types.NewArena("test")
	e, err := Open(dir, arena)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if err := e.CreateDatabaseTxn("main"); err != nil {
		t.Fatal(err)
	}
	if err := e.CreateCollectionPublic("main", "widgets", widgetColumns(), false); err != nil {
		t.Fatal(err)
	}

	txn := e.Begin()
	if _, _, err := e.Append(txn, "main", "widgets", widgetChunk(arena, "w1", 100)); err != nil {
		t.Fatal(err)
	}
	if err := e.Revert(txn); err != nil {
		t.Fatal(err)
	}

	buf := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL).WithAlias("_id"),
		types.Simple(types.INTEGER).WithAlias("price"),
	}, 4)
	if err := e.Scan(e.ReadTxn(), "main", "widgets", buf, nil, 0); err != nil {
		t.Fatal(err)
	}
	if buf.Cardinality() != 0 {
		t.Fatalf("reverted append must not be visible, got %d rows", buf.Cardinality())
	}
}
