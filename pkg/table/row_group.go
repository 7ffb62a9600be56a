package table

import (
	"github.com/cuemby/quilldb/pkg/types"
)

// RowGroup is the ordered sequence of Segments backing a Table. Row
// ids are table-scoped, dense, and strictly increasing at append time
// (§3.3): row id r lives in segment r/SegmentSize at offset
// r%SegmentSize, so segments fill in order and are never reordered.
type RowGroup struct {
	columnTypes []types.ComplexLogicalType
	segments    []*Segment
	totalRows   int64
	arena       *types.Arena
}

func newRowGroup(arena *types.Arena, columnTypes []types.ComplexLogicalType) *RowGroup {
	return &RowGroup{columnTypes: columnTypes, arena: arena}
}

func (g *RowGroup) segmentFor(rowID int64) (*Segment, int) {
	idx := int(rowID / SegmentSize)
	offset := int(rowID % SegmentSize)
	return g.segments[idx], offset
}

// reserve ensures enough segments exist to hold n additional rows
// starting at g.totalRows, allocating new ones as needed.
func (g *RowGroup) reserve(n int) {
	need := g.totalRows + int64(n)
	for int64(len(g.segments))*SegmentSize < need {
		g.segments = append(g.segments, newSegment(g.arena, g.columnTypes))
	}
}

// segmentCount returns how many segments currently exist.
func (g *RowGroup) segmentCount() int { return len(g.segments) }
