package engine

import (
	"fmt"

	"github.com/cuemby/quilldb/pkg/config"
)

// Bootstrap applies a config.Config's declared databases/collections/
// indexes, creating whichever of them the catalog doesn't already have
// on disk. It is idempotent across restarts: the init command of
// cmd/quilldb runs it each time it starts, and anything already
// recovered from the catalog is left untouched.
func (e *Engine) Bootstrap(cfg config.Config) error {
	existingDBs, err := e.cat.ListDatabases()
	if err != nil {
		return fmt.Errorf("bootstrap: list databases: %w", err)
	}
	haveDB := make(map[string]bool, len(existingDBs))
	for _, db := range existingDBs {
		haveDB[db] = true
	}

	for _, coll := range cfg.Bootstrap {
		if !haveDB[coll.Database] {
			if err := e.CreateDatabaseTxn(coll.Database); err != nil {
				return fmt.Errorf("bootstrap: create database %s: %w", coll.Database, err)
			}
			haveDB[coll.Database] = true
		}

		if _, ok, err := e.cat.GetCollection(coll.Database, coll.Name); err != nil {
			return fmt.Errorf("bootstrap: check collection %s/%s: %w", coll.Database, coll.Name, err)
		} else if ok {
			continue
		}

		columns := make([]ColumnSchemaArg, len(coll.Columns))
		for i, c := range coll.Columns {
			t, err := config.ResolveType(c.Type, c.Name)
			if err != nil {
				return fmt.Errorf("bootstrap: collection %s/%s: %w", coll.Database, coll.Name, err)
			}
			columns[i] = ColumnSchemaArg{Name: c.Name, Type: t, NotNull: c.NotNull}
		}
		if err := e.CreateCollectionPublic(coll.Database, coll.Name, columns, coll.Disk); err != nil {
			return fmt.Errorf("bootstrap: create collection %s/%s: %w", coll.Database, coll.Name, err)
		}
		for _, ix := range coll.Indexes {
			if err := e.CreateIndexTxn(coll.Database, coll.Name, ix.Name, ix.KeyPaths); err != nil {
				return fmt.Errorf("bootstrap: create index %s on %s/%s: %w", ix.Name, coll.Database, coll.Name, err)
			}
		}
	}
	return nil
}
