package types

import "math/big"

// CompareResult is compare_t: the three-way outcome of Compare.
type CompareResult int

const (
	Less CompareResult = iota - 1
	Equal
	More
)

// Compare orders a against b, casting both to their promoted type when
// they are numeric or temporal and of different tags. NA is minimal:
// it sorts below every non-null value, except that two NAs compare
// Equal.
func Compare(a, b Value) CompareResult {
	if a.IsNull() && b.IsNull() {
		return Equal
	}
	if a.IsNull() {
		return Less
	}
	if b.IsNull() {
		return More
	}
	if a.typ.Tag != b.typ.Tag && (a.typ.Tag.IsNumeric() || a.typ.Tag.IsTemporal()) &&
		(b.typ.Tag.IsNumeric() || b.typ.Tag.IsTemporal()) {
		p := PromoteType(a.typ.Tag, b.typ.Tag)
		a = CastAs(a.arena, a, Simple(p))
		b = CastAs(b.arena, b, Simple(p))
	}
	switch a.typ.Tag {
	case HUGEINT, UHUGEINT:
		return bigCompare(a.AsBigInt(), b.AsBigInt())
	case STRING_LITERAL, BLOB:
		return stringCompare(a.AsString(), b.AsString())
	case BOOLEAN:
		return boolCompare(a.AsBool(), b.AsBool())
	default:
		if a.typ.Tag.IsFloating() {
			return floatCompare(a.f64, b.f64)
		}
		if a.typ.Tag.IsSigned() || a.typ.Tag == DECIMAL || a.typ.Tag.IsTemporal() {
			return intCompare(a.i64, b.i64)
		}
		if a.typ.Tag.IsInteger() {
			return uintCompare(a.u64, b.u64)
		}
		return compareChildren(a, b)
	}
}

// Equals reports whether a and b compare Equal.
func Equals(a, b Value) bool { return Compare(a, b) == Equal }

// LessThan reports whether a sorts before b.
func LessThan(a, b Value) bool { return Compare(a, b) == Less }

func bigCompare(a, b *big.Int) CompareResult  { return CompareResult(a.Cmp(b)) }
func intCompare(a, b int64) CompareResult {
	switch {
	case a < b:
		return Less
	case a > b:
		return More
	default:
		return Equal
	}
}
func uintCompare(a, b uint64) CompareResult {
	switch {
	case a < b:
		return Less
	case a > b:
		return More
	default:
		return Equal
	}
}
func floatCompare(a, b float64) CompareResult {
	switch {
	case a < b:
		return Less
	case a > b:
		return More
	default:
		return Equal
	}
}
func stringCompare(a, b string) CompareResult {
	switch {
	case a < b:
		return Less
	case a > b:
		return More
	default:
		return Equal
	}
}
func boolCompare(a, b bool) CompareResult {
	if a == b {
		return Equal
	}
	if !a && b {
		return Less
	}
	return More
}

func compareChildren(a, b Value) CompareResult {
	n := len(a.children)
	if len(b.children) < n {
		n = len(b.children)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a.children[i], b.children[i]); c != Equal {
			return c
		}
	}
	return intCompare(int64(len(a.children)), int64(len(b.children)))
}
