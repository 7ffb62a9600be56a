package wal

import (
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

// ChunkPayload is the wire form of a vector.Chunk: column types plus
// every cell's self-describing types.Encode bytes, row-major so replay
// can rebuild one row at a time without a second pass.
type ChunkPayload struct {
	ColumnTypes []types.ComplexLogicalType `json:"column_types"`
	Cells       [][][]byte                 `json:"cells"` // Cells[row][col]
}

// EncodeChunk captures chunk's populated rows into a ChunkPayload.
func EncodeChunk(chunk *vector.Chunk) ChunkPayload {
	colTypes := chunk.ColumnTypes()
	n := chunk.Cardinality()
	cells := make([][][]byte, n)
	for row := 0; row < n; row++ {
		rowCells := make([][]byte, len(colTypes))
		for col := range colTypes {
			rowCells[col] = types.Encode(chunk.GetValue(col, row))
		}
		cells[row] = rowCells
	}
	return ChunkPayload{ColumnTypes: colTypes, Cells: cells}
}

// DecodeChunk rebuilds a vector.Chunk from a ChunkPayload, allocating
// values from arena.
func DecodeChunk(arena *types.Arena, p ChunkPayload) (*vector.Chunk, error) {
	chunk := vector.NewChunk(arena, p.ColumnTypes, len(p.Cells))
	for row, rowCells := range p.Cells {
		for col, raw := range rowCells {
			v, err := types.Decode(arena, raw)
			if err != nil {
				return nil, err
			}
			chunk.SetValue(col, row, v)
		}
	}
	chunk.SetCardinality(len(p.Cells))
	return chunk, nil
}
