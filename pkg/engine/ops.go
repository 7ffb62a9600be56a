package engine

import (
	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/predicate"
	"github.com/cuemby/quilldb/pkg/storagemgr"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

func toStoragemgrColumns(cols []ColumnSchemaArg) []storagemgr.ColumnSchema {
	out := make([]storagemgr.ColumnSchema, len(cols))
	for i, c := range cols {
		out[i] = storagemgr.ColumnSchema{Name: c.Name, Type: c.Type, NotNull: c.NotNull, Default: c.Default}
	}
	return out
}

// CreateCollectionPublic is the public, WAL-logging entry point for
// registering a new collection (`create_storage`/`create_storage_disk`,
// §6). columns may be empty for a schema-less/computing collection.
func (e *Engine) CreateCollectionPublic(database, name string, columns []ColumnSchemaArg, disk bool) error {
	return e.CreateCollectionTxn(database, name, toStoragemgrColumns(columns), disk)
}

// Scan implements storage_scan (§4.2): every row visible under txn,
// filtered and limited as requested.
func (e *Engine) Scan(txn mvcc.Transaction, database, collectionName string, out *vector.Chunk, filter func([]types.Value) bool, limit int) error {
	return e.storage.Scan(fullName(database, collectionName), out, filter, limit, txn)
}

// Fetch implements storage_fetch (§4.2): a non-MVCC row lookup by
// physical id, used to materialize index search results.
func (e *Engine) Fetch(database, collectionName string, out *vector.Chunk, ids []int64) error {
	return e.storage.Fetch(fullName(database, collectionName), out, ids)
}

// Search implements index_engine_t.search (§4.6): look up rowIDs
// satisfying `key <op> value` on the named index, visible under txn.
func (e *Engine) Search(txn mvcc.Transaction, database, collectionName, indexName string, op predicate.CompareOp, value types.Value) ([]int64, error) {
	col, err := e.getCollection(database, collectionName)
	if err != nil {
		return nil, err
	}
	return col.indexes.Search(indexName, op, value, txn)
}

// HasIndex reports whether indexName is registered on the named
// collection.
func (e *Engine) HasIndex(database, collectionName, indexName string) (bool, error) {
	col, err := e.getCollection(database, collectionName)
	if err != nil {
		return false, err
	}
	return col.indexes.HasIndex(indexName), nil
}

// StorageTypes returns the named collection's declared column types.
func (e *Engine) StorageTypes(database, collectionName string) ([]types.ComplexLogicalType, error) {
	return e.storage.StorageTypes(fullName(database, collectionName))
}

// StorageTotalRows returns the named collection's total assigned row
// count.
func (e *Engine) StorageTotalRows(database, collectionName string) (int64, error) {
	return e.storage.StorageTotalRows(fullName(database, collectionName))
}

// CleanupAllVersions runs table.Table.CleanupVersions across every
// registered collection for the given lowest-active-start watermark,
// the read half of §4.3's maybe_cleanup without the compaction step.
func (e *Engine) CleanupAllVersions(lowestActiveStart int64) {
	for _, name := range e.storage.Names() {
		if entry, ok := e.storage.Get(name); ok {
			entry.Table.CleanupVersions(lowestActiveStart)
		}
	}
}

// ColumnSchemaArg is the column-definition shape callers outside
// pkg/storagemgr use to describe a new collection's schema, re-exported
// here so callers of pkg/engine never need to import pkg/storagemgr
// directly for DDL.
type ColumnSchemaArg struct {
	Name    string
	Type    types.ComplexLogicalType
	NotNull bool
	Default *types.Value
}
