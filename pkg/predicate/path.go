package predicate

import (
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

// Side names which half of an evaluation pair a Key reads from.
// SideUnknown marks a key whose side has not yet been deduced.
type Side int

const (
	SideUnknown Side = iota
	SideLeft
	SideRight
)

// Key is a column path plus the side it is read from: the first path
// element matches a chunk column by its type alias, remaining
// elements descend into STRUCT fields by name (§4.8).
type Key struct {
	Path []string
	Side Side
}

// NewKey builds an undeduced key over path.
func NewKey(path ...string) Key { return Key{Path: path, Side: SideUnknown} }

// EvalPair bundles the two chunk+row positions a compiled predicate
// evaluates against. Right-side fields are unset for a single-chunk
// scan filter.
type EvalPair struct {
	Left     *vector.Chunk
	RowLeft  int
	Right    *vector.Chunk
	RowRight int
	HasRight bool
	Params   map[int]types.Value
}

// hasPath reports whether chunk carries a top-level column whose
// alias equals path[0].
func hasPath(chunk *vector.Chunk, path []string) bool {
	if chunk == nil || len(path) == 0 {
		return false
	}
	for _, t := range chunk.ColumnTypes() {
		if t.Alias == path[0] {
			return true
		}
	}
	return false
}

// resolve reads the value addressed by k out of pair, applying struct
// field descent for path elements beyond the first. It returns
// (value, false) if k's side is unknown and undeducible, or if the
// column/field cannot be found.
func resolve(k Key, pair *EvalPair) (types.Value, bool) {
	side := k.Side
	if side == SideUnknown {
		side = deduceSide(k, pair)
		if side == SideUnknown {
			return types.Value{}, false
		}
	}

	var chunk *vector.Chunk
	var row int
	switch side {
	case SideLeft:
		chunk, row = pair.Left, pair.RowLeft
	case SideRight:
		if !pair.HasRight {
			return types.Value{}, false
		}
		chunk, row = pair.Right, pair.RowRight
	default:
		return types.Value{}, false
	}
	if chunk == nil || len(k.Path) == 0 {
		return types.Value{}, false
	}

	colIdx := -1
	for i, t := range chunk.ColumnTypes() {
		if t.Alias == k.Path[0] {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return types.Value{}, false
	}
	val := chunk.GetValue(colIdx, row)
	for _, field := range k.Path[1:] {
		names := val.Type().Extension
		if names == nil {
			return types.Value{}, false
		}
		idx := -1
		for i, n := range names.FieldNames {
			if n == field {
				idx = i
				break
			}
		}
		if idx < 0 || idx >= len(val.Children()) {
			return types.Value{}, false
		}
		val = val.Children()[idx]
	}
	return val, true
}

// deduceSide implements §4.8's deduce_side: an undeduced key's side is
// whichever chunk carries its top-level column. A key found in
// neither (or both — ambiguous) chunk is undeducible.
func deduceSide(k Key, pair *EvalPair) Side {
	inLeft := hasPath(pair.Left, k.Path)
	inRight := pair.HasRight && hasPath(pair.Right, k.Path)
	switch {
	case inLeft && !inRight:
		return SideLeft
	case inRight && !inLeft:
		return SideRight
	default:
		return SideUnknown
	}
}
