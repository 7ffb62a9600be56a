package table

import (
	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

// SegmentSize is the fixed row-slot capacity of one Segment, matching
// the 1024-row block the version chain is carried per (§3.4).
const SegmentSize = 1024

// Segment is one 1024-row block: a vector.Chunk holding the column
// data and an mvcc.Chain holding its version state, slot for slot.
type Segment struct {
	chunk *vector.Chunk
	chain *mvcc.Chain
	used  int // high-water mark of slots ever written, <= SegmentSize
	arena *types.Arena
}

func newSegment(arena *types.Arena, columnTypes []types.ComplexLogicalType) *Segment {
	return &Segment{
		chunk: vector.NewChunk(arena, columnTypes, SegmentSize),
		chain: mvcc.NewChain(SegmentSize),
		arena: arena,
	}
}

func (s *Segment) freeSlots() int { return SegmentSize - s.used }

// writeRow writes vals into slot `slot` of the segment's chunk,
// extending `used` if slot is new.
func (s *Segment) writeRow(slot int, vals []types.Value) {
	for col, v := range vals {
		s.chunk.SetValue(col, slot, v)
	}
	if slot+1 > s.used {
		s.used = slot + 1
	}
	if slot+1 > s.chunk.Cardinality() {
		s.chunk.SetCardinality(slot + 1)
	}
}
