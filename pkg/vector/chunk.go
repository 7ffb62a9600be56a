package vector

import (
	"github.com/cuemby/quilldb/pkg/types"
)

// Chunk is data_chunk_t: a cardinality-aligned batch of column Vectors
// plus a parallel row_ids BIGINT vector holding each row's table-wide
// physical row id.
type Chunk struct {
	Columns     []*Vector
	RowIDs      *Vector
	cardinality int
	capacity    int
	arena       *types.Arena
}

// NewChunk allocates a Chunk with capacity rows over the given column
// types. RowIDs starts as the Sequence vector 0, 1, 2, ...; callers
// that scan from a table overwrite it with the rows' actual row ids
// (see table.Table.Scan).
func NewChunk(arena *types.Arena, columnTypes []types.ComplexLogicalType, capacity int) *Chunk {
	cols := make([]*Vector, len(columnTypes))
	for i, t := range columnTypes {
		cols[i] = NewFlat(arena, t, capacity)
	}
	return &Chunk{
		Columns:  cols,
		RowIDs:   NewSequence(arena, types.Simple(types.BIGINT), 0, 1, capacity),
		capacity: capacity,
		arena:    arena,
	}
}

// Cardinality returns the number of logical rows currently populated
// in the chunk (<= capacity).
func (c *Chunk) Cardinality() int { return c.cardinality }

// SetCardinality sets the number of populated rows. It is the
// producer's responsibility to have written Columns[*][0:n) before
// raising cardinality to n.
func (c *Chunk) SetCardinality(n int) {
	if n > c.capacity {
		panic("vector: SetCardinality exceeds chunk capacity")
	}
	c.cardinality = n
}

// Capacity returns the chunk's maximum row count.
func (c *Chunk) Capacity() int { return c.capacity }

// ColumnTypes returns the logical type of each column in order.
func (c *Chunk) ColumnTypes() []types.ComplexLogicalType {
	out := make([]types.ComplexLogicalType, len(c.Columns))
	for i, v := range c.Columns {
		out[i] = v.Type
	}
	return out
}

// GetValue returns the value at (col, row).
func (c *Chunk) GetValue(col, row int) types.Value {
	return c.Columns[col].GetValue(row)
}

// SetValue casts val to column col's type and writes it at row,
// marking the cell invalid instead when the cast fails (CastAs
// returns null for an unconvertible source), matching the
// set_value(col, row, value) invariant in §3.2.
func (c *Chunk) SetValue(col, row int, val types.Value) {
	target := c.Columns[col]
	if !val.Type().Equal(target.Type) && !val.IsNull() {
		cast := types.CastAs(c.arena, val, target.Type)
		target.SetValue(row, cast)
		return
	}
	target.SetValue(row, val)
}

// Slice returns a new Chunk covering rows [offset, offset+length) of
// every column and of RowIDs.
func (c *Chunk) Slice(offset, length int) *Chunk {
	cols := make([]*Vector, len(c.Columns))
	for i, v := range c.Columns {
		cols[i] = v.Slice(offset, length)
	}
	out := &Chunk{
		Columns:     cols,
		RowIDs:      c.RowIDs.Slice(offset, length),
		cardinality: length,
		capacity:    length,
		arena:       c.arena,
	}
	return out
}

// Reset zeroes cardinality so the chunk's backing arrays can be
// reused for the next batch.
func (c *Chunk) Reset() {
	c.cardinality = 0
}
