package engine

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/config"
	"github.com/cuemby/quilldb/pkg/types"
)

func TestBootstrapCreatesAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	arena := types.NewArena("test")
	e, err := Open(dir, arena)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	cfg := config.Config{
		Bootstrap: []config.Collection{
			{
				Database: "main",
				Name:     "widgets",
				Disk:     true,
				Columns: []config.Column{
					{Name: "_id", Type: "string", NotNull: true},
					{Name: "price", Type: "integer"},
				},
				Indexes: []config.Index{
					{Name: "by_id", KeyPaths: [][]string{{"_id"}}},
				},
			},
		},
	}

	if err := e.Bootstrap(cfg); err != nil {
		t.Fatal(err)
	}
	ok, err := e.HasIndex("main", "widgets", "by_id")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected by_id index to exist after bootstrap")
	}

	// Re-running must not error or duplicate the collection/index.
	if err := e.Bootstrap(cfg); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
}
