package wal

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

type fakeApplier struct {
	appended   []string
	deleted    []string
	collections []string
}

func (f *fakeApplier) DirectAppend(collection string, chunk *vector.Chunk, cid int64) error {
	f.appended = append(f.appended, collection)
	return nil
}
func (f *fakeApplier) DirectUpdate(collection string, rowIDs []int64, chunk *vector.Chunk, cid int64) error {
	f.appended = append(f.appended, collection)
	return nil
}
func (f *fakeApplier) DirectDelete(collection string, rowIDs []int64, cid int64) error {
	f.deleted = append(f.deleted, collection)
	return nil
}
func (f *fakeApplier) CreateDatabase(database string) error { return nil }
func (f *fakeApplier) DropDatabase(database string) error   { return nil }
func (f *fakeApplier) CreateCollection(database, collection string, columns []ColumnSpec, disk bool) error {
	f.collections = append(f.collections, collection)
	return nil
}
func (f *fakeApplier) DropCollection(database, collection string) error  { return nil }
func (f *fakeApplier) CreateIndexOp(database, collection, indexName string, keyPaths [][]string) error {
	return nil
}
func (f *fakeApplier) DropIndexOp(database, collection, indexName string) error { return nil }

func TestAppendAndReplay(t *testing.T) {
	arena := types.NewArena("test")
	path := filepath.Join(t.TempDir(), "wal.bolt")
	m, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	createRec, err := Encode(KindCreateCollection, CreateCollectionPayload{
		Database:   "db",
		Collection: "widgets",
		Columns:    []ColumnSpec{{Name: "id", Type: types.Simple(types.INTEGER)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Append(createRec); err != nil {
		t.Fatal(err)
	}

	chunk := vector.NewChunk(arena, []types.ComplexLogicalType{types.Simple(types.INTEGER)}, 1)
	chunk.SetValue(0, 0, types.NewInt(types.INTEGER, 7))
	chunk.SetCardinality(1)
	appendRec, err := Encode(KindAppend, AppendPayload{Collection: "widgets", Chunk: EncodeChunk(chunk)})
	if err != nil {
		t.Fatal(err)
	}
	id, err := m.Append(appendRec)
	if err != nil {
		t.Fatal(err)
	}
	if id != 2 {
		t.Fatalf("expected wal_id 2, got %d", id)
	}

	applier := &fakeApplier{}
	if err := m.Replay(1, applier, arena); err != nil {
		t.Fatal(err)
	}
	if len(applier.collections) != 1 || applier.collections[0] != "widgets" {
		t.Fatalf("expected CreateCollection(widgets), got %v", applier.collections)
	}
	if len(applier.appended) != 1 || applier.appended[0] != "widgets" {
		t.Fatalf("expected DirectAppend(widgets), got %v", applier.appended)
	}
}
