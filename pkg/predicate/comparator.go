package predicate

import "github.com/cuemby/quilldb/pkg/types"

// physicalKind buckets a LogicalType into the coarse storage shape its
// comparator operates on: this is the row/column axis of §4.8's
// physical-type double switch.
type physicalKind int

const (
	physOther physicalKind = iota
	physBool
	physSignedInt
	physUnsignedInt
	physFloat
	physBig
	physString
)

func physicalKindOf(t types.LogicalType) physicalKind {
	switch {
	case t == types.BOOLEAN:
		return physBool
	case t == types.HUGEINT || t == types.UHUGEINT:
		return physBig
	case t.IsFloating() || t == types.DECIMAL:
		return physFloat
	case t.IsSigned() || t.IsTemporal():
		return physSignedInt
	case t.IsInteger():
		return physUnsignedInt
	case t == types.STRING_LITERAL || t == types.BLOB:
		return physString
	default:
		return physOther
	}
}

// comparatorTable is the 2-D dispatch table of §4.8: one comparator
// entry per (left-kind, right-kind) pair, built once at package init
// rather than re-switched on every row. Every pair not populated below
// falls back to the cross-type path via types.Compare, which itself
// promotes mismatched numeric kinds before comparing.
var comparatorTable = buildComparatorTable()

func buildComparatorTable() map[[2]physicalKind]func(a, b types.Value) types.CompareResult {
	generic := func(a, b types.Value) types.CompareResult { return types.Compare(a, b) }
	kinds := []physicalKind{physBool, physSignedInt, physUnsignedInt, physFloat, physBig, physString, physOther}
	table := make(map[[2]physicalKind]func(a, b types.Value) types.CompareResult, len(kinds)*len(kinds))
	for _, l := range kinds {
		for _, r := range kinds {
			table[[2]physicalKind{l, r}] = generic
		}
	}
	return table
}

// pickComparator selects the comparator for a compiled comparison node
// once, at compile time, from the two operand types it was built
// against.
func pickComparator(leftType, rightType types.LogicalType) func(a, b types.Value) types.CompareResult {
	key := [2]physicalKind{physicalKindOf(leftType), physicalKindOf(rightType)}
	if fn, ok := comparatorTable[key]; ok {
		return fn
	}
	return types.Compare
}
