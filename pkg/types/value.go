package types

import (
	"fmt"
	"math/big"
)

// Value is quilldb's tagged value, logical_value_t. It carries its
// type, a null flag, an inline scalar payload (one of i64/u64/f64/big
// depending on Tag), and — for STRING_LITERAL/BLOB/composite types —
// a heap payload owned by an Arena.
//
// Assigning a Value (`b := a`) is a shallow Go struct copy: for scalar
// types that is a correct copy, but for a Value holding a heap payload
// (Str/Children) it aliases the same backing array, matching neither
// the original's copy-constructor (always deep) nor its move (always
// null-out). Callers that need the original's copy semantics must call
// Clone explicitly; callers that only read are fine aliasing, since
// this package never mutates a Value's heap payload in place.
type Value struct {
	typ  ComplexLogicalType
	null bool

	i64 int64
	u64 uint64
	f64 float64
	big *big.Int // HUGEINT/UHUGEINT only

	str      string
	children []Value

	arena *Arena
}

// Type returns the value's complex logical type.
func (v Value) Type() ComplexLogicalType { return v.typ }

// IsNull reports whether the value is SQL/NA null.
func (v Value) IsNull() bool { return v.null }

// NewNull builds a null value of the given type.
func NewNull(t ComplexLogicalType) Value {
	return Value{typ: t, null: true}
}

// NewBool builds a BOOLEAN value.
func NewBool(b bool) Value {
	v := Value{typ: Simple(BOOLEAN)}
	if b {
		v.i64 = 1
	}
	return v
}

// NewInt builds a signed integer value of the given width tag
// (TINYINT/SMALLINT/INTEGER/BIGINT).
func NewInt(tag LogicalType, val int64) Value {
	return Value{typ: Simple(tag), i64: val}
}

// NewUint builds an unsigned integer value of the given width tag.
func NewUint(tag LogicalType, val uint64) Value {
	return Value{typ: Simple(tag), u64: val}
}

// NewHugeint builds a HUGEINT value from a signed big.Int.
func NewHugeint(arena *Arena, val *big.Int) Value {
	cp := new(big.Int).Set(val)
	if arena != nil {
		arena.account(int64(len(cp.Bits())) * 8)
	}
	return Value{typ: Simple(HUGEINT), big: cp, arena: arena}
}

// NewUhugeint builds a UHUGEINT value from an unsigned big.Int.
func NewUhugeint(arena *Arena, val *big.Int) Value {
	v := NewHugeint(arena, val)
	v.typ = Simple(UHUGEINT)
	return v
}

// NewFloat32 builds a FLOAT value.
func NewFloat32(f float32) Value {
	return Value{typ: Simple(FLOAT), f64: float64(f)}
}

// NewFloat64 builds a DOUBLE value.
func NewFloat64(f float64) Value {
	return Value{typ: Simple(DOUBLE), f64: f}
}

// NewDecimal builds a DECIMAL(width, scale) value from its raw int64
// representation (the value times 10^scale).
func NewDecimal(width, scale int, raw int64) Value {
	return Value{typ: Decimal(width, scale), i64: raw}
}

// NewTimestamp builds a TIMESTAMP_* value from its raw integer count
// of the tag's unit since the epoch.
func NewTimestamp(tag LogicalType, raw int64) Value {
	return Value{typ: Simple(tag), i64: raw}
}

// NewString builds a STRING_LITERAL value, copying s from arena.
func NewString(arena *Arena, s string) Value {
	return Value{typ: Simple(STRING_LITERAL), str: arena.NewString(s), arena: arena}
}

// NewBlob builds a BLOB value, copying b from arena.
func NewBlob(arena *Arena, b []byte) Value {
	return Value{typ: Simple(BLOB), str: arena.NewString(string(b)), arena: arena}
}

// NewPointer builds a POINTER value (an opaque row/handle reference).
func NewPointer(val int64) Value {
	return Value{typ: Simple(POINTER), i64: val}
}

// NewList builds a LIST(elem) value owning a copy of vals.
func NewList(arena *Arena, elem ComplexLogicalType, vals []Value) Value {
	return Value{typ: ListOf(elem), children: cloneChildren(arena, vals), arena: arena}
}

// NewArrayValue builds an ARRAY(elem, n) value; len(vals) must equal n.
func NewArrayValue(arena *Arena, elem ComplexLogicalType, vals []Value) Value {
	return Value{typ: ArrayOf(elem, len(vals)), children: cloneChildren(arena, vals), arena: arena}
}

// NewStructValue builds a STRUCT(fields...) value.
func NewStructValue(arena *Arena, names []string, vals []Value) Value {
	types := make([]ComplexLogicalType, len(vals))
	for i, c := range vals {
		types[i] = c.typ
	}
	return Value{typ: StructOf(names, types), children: cloneChildren(arena, vals), arena: arena}
}

// NewMapValue builds a MAP(key, value) value from parallel key/value slices.
func NewMapValue(arena *Arena, keyType, valType ComplexLogicalType, keys, vals []Value) Value {
	if len(keys) != len(vals) {
		panic("types: NewMapValue keys/vals length mismatch")
	}
	entries := make([]Value, len(keys))
	for i := range keys {
		entries[i] = NewStructValue(arena, []string{"key", "value"}, []Value{keys[i], vals[i]})
	}
	return Value{typ: MapOf(keyType, valType), children: cloneChildren(arena, entries), arena: arena}
}

// NewUnionValue builds a UNION(tag, variants...) value selecting the
// active member by index.
func NewUnionValue(arena *Arena, names []string, variantTypes []ComplexLogicalType, activeIdx int, active Value) Value {
	v := Value{typ: UnionOf(names, variantTypes), children: cloneChildren(arena, []Value{active}), arena: arena}
	v.i64 = int64(activeIdx)
	return v
}

func cloneChildren(arena *Arena, vals []Value) []Value {
	out := arena.NewValues(len(vals))
	for i, c := range vals {
		out[i] = c.Clone(arena)
	}
	return out
}

// Children returns the composite payload of a LIST/ARRAY/STRUCT/MAP
// (as key,value struct pairs)/UNION (single active member) value.
func (v Value) Children() []Value { return v.children }

// UnionActiveIndex returns the selected variant index of a UNION value.
func (v Value) UnionActiveIndex() int { return int(v.i64) }

// Clone deep-copies v, allocating any heap payload from arena. Scalar
// values are returned unchanged (with Arena retagged) since they carry
// no heap payload to duplicate.
func (v Value) Clone(arena *Arena) Value {
	out := v
	out.arena = arena
	if v.str != "" {
		out.str = arena.NewString(v.str)
	}
	if v.big != nil {
		out.big = new(big.Int).Set(v.big)
	}
	if v.children != nil {
		out.children = cloneChildren(arena, v.children)
	}
	return out
}

// --- scalar accessors ---

// AsBool returns the BOOLEAN payload.
func (v Value) AsBool() bool { return v.i64 != 0 }

// AsInt64 returns the signed integer payload (TINYINT..BIGINT, DECIMAL
// raw, TIMESTAMP_* raw, POINTER).
func (v Value) AsInt64() int64 { return v.i64 }

// AsUint64 returns the unsigned integer payload (UTINYINT..UBIGINT).
func (v Value) AsUint64() uint64 { return v.u64 }

// AsBigInt returns the HUGEINT/UHUGEINT payload.
func (v Value) AsBigInt() *big.Int {
	if v.big == nil {
		return new(big.Int)
	}
	return v.big
}

// AsFloat64 returns the FLOAT/DOUBLE payload.
func (v Value) AsFloat64() float64 { return v.f64 }

// AsString returns the STRING_LITERAL/BLOB payload.
func (v Value) AsString() string { return v.str }

// AsBytes returns the BLOB payload as a byte slice copy.
func (v Value) AsBytes() []byte { return []byte(v.str) }

// DecimalParts returns the DECIMAL(width, scale) parameters.
func (v Value) DecimalParts() (width, scale int) {
	if v.typ.Extension == nil {
		return 0, 0
	}
	return v.typ.Extension.DecimalWidth, v.typ.Extension.DecimalScale
}

// AsFloat64Generic widens any numeric value (integer, unsigned,
// hugeint, decimal, float) to a float64 for display/aggregation paths
// that do not need exact precision.
func (v Value) AsFloat64Generic() float64 {
	switch {
	case v.typ.Tag.IsFloating():
		return v.f64
	case v.typ.Tag == DECIMAL:
		_, scale := v.DecimalParts()
		div := 1.0
		for i := 0; i < scale; i++ {
			div *= 10
		}
		return float64(v.i64) / div
	case v.typ.Tag == HUGEINT || v.typ.Tag == UHUGEINT:
		f := new(big.Float).SetInt(v.AsBigInt())
		out, _ := f.Float64()
		return out
	case v.typ.Tag.IsSigned():
		return float64(v.i64)
	case v.typ.Tag.IsInteger():
		return float64(v.u64)
	default:
		return 0
	}
}

func (v Value) String() string {
	if v.null {
		return "NULL"
	}
	switch v.typ.Tag {
	case BOOLEAN:
		return fmt.Sprintf("%v", v.AsBool())
	case STRING_LITERAL, BLOB:
		return v.str
	case HUGEINT, UHUGEINT:
		return v.AsBigInt().String()
	case FLOAT, DOUBLE:
		return fmt.Sprintf("%v", v.f64)
	case DECIMAL:
		return fmt.Sprintf("%v", v.AsFloat64Generic())
	default:
		if v.typ.Tag.IsSigned() {
			return fmt.Sprintf("%d", v.i64)
		}
		if v.typ.Tag.IsInteger() {
			return fmt.Sprintf("%d", v.u64)
		}
		return fmt.Sprintf("%v", v.typ)
	}
}
