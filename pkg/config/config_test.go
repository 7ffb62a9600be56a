package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quilldb.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /var/lib/quilldb\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/var/lib/quilldb" {
		t.Fatalf("DataDir = %q, want /var/lib/quilldb", cfg.DataDir)
	}
	if cfg.PageSize != Default().PageSize {
		t.Fatalf("PageSize = %d, want default %d", cfg.PageSize, Default().PageSize)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadBootstrapCollections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quilldb.yaml")
	body := `
data_dir: ./data
bootstrap:
  - database: main
    name: widgets
    disk: true
    columns:
      - name: _id
        type: string
        not_null: true
      - name: price
        type: integer
    indexes:
      - name: by_id
        key_paths:
          - ["_id"]
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Bootstrap) != 1 {
		t.Fatalf("Bootstrap = %v, want 1 entry", cfg.Bootstrap)
	}
	coll := cfg.Bootstrap[0]
	if coll.Database != "main" || coll.Name != "widgets" || !coll.Disk {
		t.Fatalf("unexpected collection: %+v", coll)
	}
	if len(coll.Columns) != 2 || len(coll.Indexes) != 1 {
		t.Fatalf("unexpected schema: %+v", coll)
	}
}

func TestResolveTypeUnknown(t *testing.T) {
	if _, err := ResolveType("not-a-type", "x"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
