package wal

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

// Applier is the direct/physical replay surface a WAL record is played
// against: every method skips the MVCC bookkeeping, deduplication and
// NOT-NULL checks the original write already went through once, and
// applies the record's effect unconditionally. pkg/engine implements
// it over storagemgr.Manager and index.Engine.
type Applier interface {
	DirectAppend(collection string, chunk *vector.Chunk, cid int64) error
	DirectUpdate(collection string, rowIDs []int64, chunk *vector.Chunk, cid int64) error
	DirectDelete(collection string, rowIDs []int64, cid int64) error

	CreateDatabase(database string) error
	DropDatabase(database string) error
	CreateCollection(database, collection string, columns []ColumnSpec, disk bool) error
	DropCollection(database, collection string) error
	CreateIndexOp(database, collection, indexName string, keyPaths [][]string) error
	DropIndexOp(database, collection, indexName string) error
}

// apply decodes rec's payload by its Kind and dispatches to applier,
// the same case-per-Op shape as WarrenFSM.Apply.
func apply(rec Record, applier Applier, arena *types.Arena) error {
	switch rec.Kind {
	case KindAppend:
		var p AppendPayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return err
		}
		chunk, err := DecodeChunk(arena, p.Chunk)
		if err != nil {
			return err
		}
		return applier.DirectAppend(p.Collection, chunk, 0)

	case KindUpdate:
		var p UpdatePayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return err
		}
		chunk, err := DecodeChunk(arena, p.Chunk)
		if err != nil {
			return err
		}
		return applier.DirectUpdate(p.Collection, p.RowIDs, chunk, 0)

	case KindDelete:
		var p DeletePayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return err
		}
		return applier.DirectDelete(p.Collection, p.RowIDs, 0)

	case KindCreateDatabase:
		var p CreateDatabasePayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return err
		}
		return applier.CreateDatabase(p.Database)

	case KindDropDatabase:
		var p DropDatabasePayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return err
		}
		return applier.DropDatabase(p.Database)

	case KindCreateCollection:
		var p CreateCollectionPayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return err
		}
		return applier.CreateCollection(p.Database, p.Collection, p.Columns, p.Disk)

	case KindDropCollection:
		var p DropCollectionPayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return err
		}
		return applier.DropCollection(p.Database, p.Collection)

	case KindCreateIndex:
		var p CreateIndexPayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return err
		}
		return applier.CreateIndexOp(p.Database, p.Collection, p.IndexName, p.KeyPaths)

	case KindDropIndex:
		var p DropIndexPayload
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return err
		}
		return applier.DropIndexOp(p.Database, p.Collection, p.IndexName)

	default:
		return fmt.Errorf("wal: unknown record kind: %s", rec.Kind)
	}
}
