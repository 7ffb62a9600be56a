package diskindex

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/index"
	"github.com/cuemby/quilldb/pkg/types"
)

func TestInsertRemoveLoadAll(t *testing.T) {
	arena := types.NewArena("test")
	agent, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer agent.Close()

	ops := []index.DiskOp{
		{Key: types.NewInt(types.INTEGER, 1), RowID: 10},
		{Key: types.NewInt(types.INTEGER, 2), RowID: 11},
	}
	if err := agent.InsertMany(ops); err != nil {
		t.Fatal(err)
	}

	loaded, err := agent.LoadAll(arena)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}

	if err := agent.RemoveMany(ops[:1]); err != nil {
		t.Fatal(err)
	}
	loaded, err = agent.LoadAll(arena)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].RowID != 11 {
		t.Fatalf("expected only row 11 to remain, got %v", loaded)
	}
}
