package wal

import (
	"encoding/json"

	"github.com/cuemby/quilldb/pkg/types"
)

// Kind tags the payload carried by a Record, the way manager.Command
// tags its Data with an Op string.
type Kind string

const (
	KindAppend           Kind = "append"
	KindUpdate           Kind = "update"
	KindDelete           Kind = "delete"
	KindCreateDatabase   Kind = "create_database"
	KindDropDatabase     Kind = "drop_database"
	KindCreateCollection Kind = "create_collection"
	KindDropCollection   Kind = "drop_collection"
	KindCreateIndex      Kind = "create_index"
	KindDropIndex        Kind = "drop_index"
)

// Record is one WAL entry's logical body (§4.4): a Kind tag plus its
// JSON payload, the same {Op, Data json.RawMessage} shape as
// manager.Command, generalized to every record kind a transaction can
// produce instead of just cluster-state commands.
type Record struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// ColumnSpec describes one column for CreateCollectionPayload. types.
// ComplexLogicalType marshals directly since every field it exposes is
// exported, so no custom codec is needed for the type itself.
type ColumnSpec struct {
	Name    string                   `json:"name"`
	Type    types.ComplexLogicalType `json:"type"`
	NotNull bool                     `json:"not_null"`
	Default []byte                   `json:"default,omitempty"` // types.Encode of the default value, if any
}

// AppendPayload is KindAppend's body: the target collection and the
// chunk of rows the acceptance pipeline already validated once.
type AppendPayload struct {
	Collection string       `json:"collection"`
	Chunk      ChunkPayload `json:"chunk"`
}

// UpdatePayload is KindUpdate's body: overwrite the rows at RowIDs with
// Chunk's rows in place, mirroring table.Table.Update (the row ids
// themselves never change).
type UpdatePayload struct {
	Collection string       `json:"collection"`
	RowIDs     []int64      `json:"row_ids"`
	Chunk      ChunkPayload `json:"chunk"`
}

// DeletePayload is KindDelete's body.
type DeletePayload struct {
	Collection string  `json:"collection"`
	RowIDs     []int64 `json:"row_ids"`
}

// CreateDatabasePayload/DropDatabasePayload are the DDL bodies for
// database-level catalog changes.
type CreateDatabasePayload struct {
	Database string `json:"database"`
}

type DropDatabasePayload struct {
	Database string `json:"database"`
}

// CreateCollectionPayload is KindCreateCollection's body.
type CreateCollectionPayload struct {
	Database   string       `json:"database"`
	Collection string       `json:"collection"`
	Columns    []ColumnSpec `json:"columns"`
	Disk       bool         `json:"disk"`
}

type DropCollectionPayload struct {
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

// CreateIndexPayload is KindCreateIndex's body; KeyPaths mirrors
// index.KeySchema.Paths so replay can reconstruct the schema exactly.
type CreateIndexPayload struct {
	Database   string     `json:"database"`
	Collection string     `json:"collection"`
	IndexName  string     `json:"index_name"`
	KeyPaths   [][]string `json:"key_paths"`
}

type DropIndexPayload struct {
	Database   string `json:"database"`
	Collection string `json:"collection"`
	IndexName  string `json:"index_name"`
}

// Encode marshals payload into a Record of the given kind.
func Encode(kind Kind, payload any) (Record, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Record{}, err
	}
	return Record{Kind: kind, Data: data}, nil
}
