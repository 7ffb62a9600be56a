package catalog

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/types"
)

func TestPutGetDropCollection(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.PutDatabase("main"); err != nil {
		t.Fatal(err)
	}
	meta := CollectionMeta{
		Database:    "main",
		Name:        "widgets",
		StorageMode: "disk",
		Columns: []ColumnMeta{
			{Name: "_id", Type: types.Simple(types.STRING_LITERAL), NotNull: true},
		},
	}
	if err := s.PutCollection(meta); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.GetCollection("main", "widgets")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected collection to be found")
	}
	if got.StorageMode != "disk" || len(got.Columns) != 1 {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := s.PutIndex(IndexMeta{Database: "main", Collection: "widgets", Name: "by_id", KeyPaths: [][]string{{"_id"}}}); err != nil {
		t.Fatal(err)
	}
	indexes, err := s.ListIndexes("main", "widgets")
	if err != nil {
		t.Fatal(err)
	}
	if len(indexes) != 1 {
		t.Fatalf("expected 1 index, got %d", len(indexes))
	}

	if err := s.DropCollection("main", "widgets"); err != nil {
		t.Fatal(err)
	}
	if _, found, err = s.GetCollection("main", "widgets"); err != nil {
		t.Fatal(err)
	} else if found {
		t.Fatal("expected collection to be gone")
	}
	if indexes, err = s.ListIndexes("main", "widgets"); err != nil {
		t.Fatal(err)
	} else if len(indexes) != 0 {
		t.Fatalf("expected indexes dropped with collection, got %d", len(indexes))
	}
}
