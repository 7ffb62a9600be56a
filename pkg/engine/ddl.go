package engine

import (
	"fmt"
	"path/filepath"

	"github.com/cuemby/quilldb/pkg/catalog"
	"github.com/cuemby/quilldb/pkg/diskindex"
	"github.com/cuemby/quilldb/pkg/index"
	"github.com/cuemby/quilldb/pkg/metrics"
	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/storagemgr"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
	"github.com/cuemby/quilldb/pkg/wal"
)

func columnSchemasFromMeta(arena *types.Arena, cols []catalog.ColumnMeta) ([]storagemgr.ColumnSchema, error) {
	out := make([]storagemgr.ColumnSchema, len(cols))
	for i, c := range cols {
		out[i] = storagemgr.ColumnSchema{Name: c.Name, Type: c.Type, NotNull: c.NotNull}
		if c.Default != nil {
			v, err := types.Decode(arena, c.Default)
			if err != nil {
				return nil, fmt.Errorf("decode default for column %s: %w", c.Name, err)
			}
			out[i].Default = &v
		}
	}
	return out, nil
}

func columnSchemasFromSpecs(arena *types.Arena, specs []wal.ColumnSpec) ([]storagemgr.ColumnSchema, error) {
	out := make([]storagemgr.ColumnSchema, len(specs))
	for i, c := range specs {
		out[i] = storagemgr.ColumnSchema{Name: c.Name, Type: c.Type, NotNull: c.NotNull}
		if c.Default != nil {
			v, err := types.Decode(arena, c.Default)
			if err != nil {
				return nil, fmt.Errorf("decode default for column %s: %w", c.Name, err)
			}
			out[i].Default = &v
		}
	}
	return out, nil
}

func metaFromColumnSchemas(cols []storagemgr.ColumnSchema) []catalog.ColumnMeta {
	out := make([]catalog.ColumnMeta, len(cols))
	for i, c := range cols {
		out[i] = catalog.ColumnMeta{Name: c.Name, Type: c.Type, NotNull: c.NotNull}
		if c.Default != nil {
			out[i].Default = types.Encode(*c.Default)
		}
	}
	return out
}

func specsFromColumnSchemas(cols []storagemgr.ColumnSchema) []wal.ColumnSpec {
	out := make([]wal.ColumnSpec, len(cols))
	for i, c := range cols {
		out[i] = wal.ColumnSpec{Name: c.Name, Type: c.Type, NotNull: c.NotNull}
		if c.Default != nil {
			out[i].Default = types.Encode(*c.Default)
		}
	}
	return out
}

// CreateDatabaseTxn registers a new database namespace. It is the
// public, WAL-logging entry point; CreateDatabase below (the
// wal.Applier method) is its physical half, shared with replay.
func (e *Engine) CreateDatabaseTxn(database string) error {
	rec, err := wal.Encode(wal.KindCreateDatabase, wal.CreateDatabasePayload{Database: database})
	if err != nil {
		return err
	}
	if _, err := e.wal.Append(rec); err != nil {
		return err
	}
	metrics.WALRecordsTotal.WithLabelValues(string(wal.KindCreateDatabase)).Inc()
	return e.CreateDatabase(database)
}

// CreateDatabase is wal.Applier's physical apply: persist the database
// name in the catalog. Called directly by replay and, after WAL
// logging, by CreateDatabaseTxn.
func (e *Engine) CreateDatabase(database string) error {
	return e.cat.PutDatabase(database)
}

// DropDatabaseTxn is DropDatabase's WAL-logging counterpart.
func (e *Engine) DropDatabaseTxn(database string) error {
	rec, err := wal.Encode(wal.KindDropDatabase, wal.DropDatabasePayload{Database: database})
	if err != nil {
		return err
	}
	if _, err := e.wal.Append(rec); err != nil {
		return err
	}
	metrics.WALRecordsTotal.WithLabelValues(string(wal.KindDropDatabase)).Inc()
	return e.DropDatabase(database)
}

// DropDatabase removes database and every collection under it, from
// both the catalog and the live registry.
func (e *Engine) DropDatabase(database string) error {
	e.mu.Lock()
	for name, col := range e.collections {
		if col.database != database {
			continue
		}
		for _, agent := range col.agents {
			agent.Close()
		}
		e.storage.DropStorage(name)
		delete(e.collections, name)
	}
	e.mu.Unlock()
	return e.cat.DropDatabase(database)
}

// CreateCollectionTxn is `create_storage`/`create_storage_with_columns`/
// `create_storage_disk` (§6): it WAL-logs the DDL, then calls
// CreateCollection to actually register the storage entry, index
// engine and catalog record.
func (e *Engine) CreateCollectionTxn(database, name string, columns []storagemgr.ColumnSchema, disk bool) error {
	rec, err := wal.Encode(wal.KindCreateCollection, wal.CreateCollectionPayload{
		Database:   database,
		Collection: name,
		Columns:    specsFromColumnSchemas(columns),
		Disk:       disk,
	})
	if err != nil {
		return err
	}
	if _, err := e.wal.Append(rec); err != nil {
		return err
	}
	metrics.WALRecordsTotal.WithLabelValues(string(wal.KindCreateCollection)).Inc()
	return e.createCollection(database, name, columns, disk)
}

// CreateCollection implements wal.Applier: it decodes the WAL-carried
// ColumnSpecs back into storagemgr.ColumnSchema and registers the
// collection, the same as CreateCollectionTxn's direct half.
func (e *Engine) CreateCollection(database, name string, specs []wal.ColumnSpec, disk bool) error {
	columns, err := columnSchemasFromSpecs(e.arena, specs)
	if err != nil {
		return err
	}
	return e.createCollection(database, name, columns, disk)
}

func (e *Engine) createCollection(database, name string, columns []storagemgr.ColumnSchema, disk bool) error {
	full := fullName(database, name)
	var path string
	var err error
	if disk {
		path = filepath.Join(e.dataDir, database, name, "table.otbx")
		_, err = e.storage.CreateStorageDisk(full, columns, path)
	} else {
		_, err = e.storage.CreateStorageMemory(full, columns)
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.collections[full] = &collection{database: database, name: name, indexes: index.NewEngine(e.arena, full), agents: map[string]*diskindex.Agent{}}
	e.mu.Unlock()

	mode := "memory"
	if disk {
		mode = "disk"
	}
	return e.cat.PutCollection(catalog.CollectionMeta{
		Database:    database,
		Name:        name,
		Columns:     metaFromColumnSchemas(columns),
		StorageMode: mode,
		Path:        path,
	})
}

// DropCollectionTxn is `drop_storage` (§6).
func (e *Engine) DropCollectionTxn(database, name string) error {
	rec, err := wal.Encode(wal.KindDropCollection, wal.DropCollectionPayload{Database: database, Collection: name})
	if err != nil {
		return err
	}
	if _, err := e.wal.Append(rec); err != nil {
		return err
	}
	metrics.WALRecordsTotal.WithLabelValues(string(wal.KindDropCollection)).Inc()
	return e.DropCollection(database, name)
}

// DropCollection implements wal.Applier.
func (e *Engine) DropCollection(database, name string) error {
	full := fullName(database, name)
	e.mu.Lock()
	col, ok := e.collections[full]
	if ok {
		for _, agent := range col.agents {
			agent.Close()
		}
		delete(e.collections, full)
	}
	e.mu.Unlock()
	if err := e.storage.DropStorage(full); err != nil {
		return err
	}
	return e.cat.DropCollection(database, name)
}

// CreateIndexTxn is `create_index` (§6).
func (e *Engine) CreateIndexTxn(database, collectionName, indexName string, keyPaths [][]string) error {
	rec, err := wal.Encode(wal.KindCreateIndex, wal.CreateIndexPayload{
		Database: database, Collection: collectionName, IndexName: indexName, KeyPaths: keyPaths,
	})
	if err != nil {
		return err
	}
	if _, err := e.wal.Append(rec); err != nil {
		return err
	}
	metrics.WALRecordsTotal.WithLabelValues(string(wal.KindCreateIndex)).Inc()
	return e.CreateIndexOp(database, collectionName, indexName, keyPaths)
}

// CreateIndexOp implements wal.Applier: register the index on the
// collection's index.Engine, attach a fresh diskindex.Agent, and
// backfill it from every row currently visible in the table (§4.6
// rebuild on create).
func (e *Engine) CreateIndexOp(database, collectionName, indexName string, keyPaths [][]string) error {
	col, err := e.getCollection(database, collectionName)
	if err != nil {
		return err
	}
	schema := index.NewKeySchemaPaths(keyPaths...)
	ix, err := col.indexes.CreateIndex(indexName, schema)
	if err != nil {
		return err
	}
	agentDir := filepath.Join(e.dataDir, database, collectionName, indexName)
	agent, err := diskindex.Open(agentDir)
	if err != nil {
		return err
	}
	col.indexes.AttachAgent(indexName, agent)
	e.mu.Lock()
	col.agents[indexName] = agent
	e.mu.Unlock()

	full := fullName(database, collectionName)
	colTypes, err := e.storage.StorageTypes(full)
	if err != nil {
		return err
	}
	total, err := e.storage.StorageTotalRows(full)
	if err != nil {
		return err
	}
	if total > 0 {
		buf := vector.NewChunk(e.arena, colTypes, int(total))
		if err := e.storage.Scan(full, buf, nil, 0, mvcc.Passive(1<<62)); err != nil {
			return err
		}
		for row := 0; row < buf.Cardinality(); row++ {
			vals := make([]types.Value, len(colTypes))
			for col := range colTypes {
				vals[col] = buf.GetValue(col, row)
			}
			key, ok := schema.ExtractKey(e.arena, colTypes, vals)
			if ok {
				ix.SeedCommitted(key, buf.RowIDs.GetValue(row).AsInt64())
			}
		}
	}
	return e.cat.PutIndex(catalog.IndexMeta{Database: database, Collection: collectionName, Name: indexName, KeyPaths: keyPaths})
}

// DropIndexTxn is `drop_index` (§6).
func (e *Engine) DropIndexTxn(database, collectionName, indexName string) error {
	rec, err := wal.Encode(wal.KindDropIndex, wal.DropIndexPayload{Database: database, Collection: collectionName, IndexName: indexName})
	if err != nil {
		return err
	}
	if _, err := e.wal.Append(rec); err != nil {
		return err
	}
	metrics.WALRecordsTotal.WithLabelValues(string(wal.KindDropIndex)).Inc()
	return e.DropIndexOp(database, collectionName, indexName)
}

// DropIndexOp implements wal.Applier.
func (e *Engine) DropIndexOp(database, collectionName, indexName string) error {
	col, err := e.getCollection(database, collectionName)
	if err != nil {
		return err
	}
	if err := col.indexes.DropIndex(indexName); err != nil {
		return err
	}
	e.mu.Lock()
	if agent, ok := col.agents[indexName]; ok {
		agent.Close()
		delete(col.agents, indexName)
	}
	e.mu.Unlock()
	return e.cat.DropIndex(database, collectionName, indexName)
}
