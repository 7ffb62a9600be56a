package storagemgr

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

func oneRowChunk(arena *types.Arena, id string, x int64) *vector.Chunk {
	c := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.STRING_LITERAL).WithAlias("_id"),
		types.Simple(types.INTEGER).WithAlias("x"),
	}, 1)
	c.SetValue(0, 0, types.NewString(arena, id))
	c.SetValue(1, 0, types.NewInt(types.INTEGER, x))
	c.SetCardinality(1)
	return c
}

func TestAppendDedupOnID(t *testing.T) {
	arena := types.NewArena("test")
	m := NewManager(arena)
	if _, err := m.CreateStorageMemory("db.users", nil); err != nil {
		t.Fatal(err)
	}

	start, n, err := m.Append("db.users", oneRowChunk(arena, "a", 1), 1)
	if err != nil || n != 1 {
		t.Fatalf("first append: start=%d n=%d err=%v", start, n, err)
	}

	_, n2, err := m.Append("db.users", oneRowChunk(arena, "a", 2), 2)
	if err != nil {
		t.Fatal(err)
	}
	if n2 != 0 {
		t.Fatalf("duplicate _id append accepted %d rows, want 0", n2)
	}

	total, err := m.StorageTotalRows("db.users")
	if err != nil || total != 1 {
		t.Fatalf("total rows = %d, want 1 (err=%v)", total, err)
	}

	out := vector.NewChunk(arena, mustTypes(m, "db.users"), 4)
	if err := m.Scan("db.users", out, nil, 0, mvcc.Passive(10)); err != nil {
		t.Fatal(err)
	}
	if out.Cardinality() != 1 || out.GetValue(1, 0).AsInt64() != 1 {
		t.Fatalf("scan after dedup = %+v, want single row x=1", out)
	}
}

func TestAppendNotNullRejection(t *testing.T) {
	arena := types.NewArena("test")
	m := NewManager(arena)
	cols := []ColumnSchema{
		{Name: "_id", Type: types.Simple(types.BIGINT), NotNull: true},
		{Name: "name", Type: types.Simple(types.STRING_LITERAL)},
	}
	if _, err := m.CreateStorageMemory("db.items", cols); err != nil {
		t.Fatal(err)
	}

	in := vector.NewChunk(arena, []types.ComplexLogicalType{
		types.Simple(types.BIGINT).WithAlias("_id"),
		types.Simple(types.STRING_LITERAL).WithAlias("name"),
	}, 1)
	in.Columns[0].SetNull(0)
	in.SetValue(1, 0, types.NewString(arena, "x"))
	in.SetCardinality(1)

	_, n, err := m.Append("db.items", in, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("NOT NULL violation accepted %d rows, want 0", n)
	}
	total, _ := m.StorageTotalRows("db.items")
	if total != 0 {
		t.Fatalf("table total rows = %d, want 0 after rejected append", total)
	}
}

func TestAppendSchemaAdoptionOnComputingTable(t *testing.T) {
	arena := types.NewArena("test")
	m := NewManager(arena)
	if _, err := m.CreateStorageMemory("computed.tmp", nil); err != nil {
		t.Fatal(err)
	}
	_, n, err := m.Append("computed.tmp", oneRowChunk(arena, "a", 7), 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("accepted %d rows, want 1", n)
	}
	types_, err := m.StorageTypes("computed.tmp")
	if err != nil || len(types_) != 2 {
		t.Fatalf("adopted schema = %v (err=%v), want 2 columns", types_, err)
	}
}

func mustTypes(m *Manager, name string) []types.ComplexLogicalType {
	t, _ := m.StorageTypes(name)
	return t
}
