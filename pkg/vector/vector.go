package vector

import (
	"github.com/cuemby/quilldb/pkg/types"
)

// Encoding is vector_type: how a Vector's Data slice should be
// interpreted.
type Encoding int

const (
	// Flat stores one value per logical row directly in Data.
	Flat Encoding = iota
	// Constant stores a single value in Data[0] repeated Capacity times.
	Constant
	// Dictionary stores distinct payload values in Data and a
	// selection vector (Selection) mapping each logical row to a
	// payload index.
	Dictionary
	// Sequence stores a (start, increment) pair in Data[0]/Data[1];
	// row i is start + i*increment. Used for row_ids and synthetic
	// monotone columns.
	Sequence
)

// Vector is a dense column of Values of a single ComplexLogicalType.
type Vector struct {
	Type     types.ComplexLogicalType
	Capacity int
	Encoding Encoding

	Data      []types.Value
	Validity  []bool // true = valid (non-null); nil means all-valid
	Selection []int32

	arena *types.Arena
}

// NewFlat creates a Flat vector with capacity rows, all initialized
// null.
func NewFlat(arena *types.Arena, t types.ComplexLogicalType, capacity int) *Vector {
	v := &Vector{Type: t, Capacity: capacity, Encoding: Flat, arena: arena}
	v.Data = arena.NewValues(capacity)
	v.Validity = make([]bool, capacity)
	for i := range v.Data {
		v.Data[i] = types.NewNull(t)
	}
	return v
}

// NewConstant creates a Constant vector of capacity rows all equal to val.
func NewConstant(arena *types.Arena, val types.Value, capacity int) *Vector {
	return &Vector{
		Type: val.Type(), Capacity: capacity, Encoding: Constant,
		Data: []types.Value{val}, arena: arena,
	}
}

// NewSequence creates a Sequence vector: row i = start + i*increment.
func NewSequence(arena *types.Arena, t types.ComplexLogicalType, start, increment int64, capacity int) *Vector {
	return &Vector{
		Type: t, Capacity: capacity, Encoding: Sequence,
		Data: []types.Value{types.NewInt(t.Tag, start), types.NewInt(t.Tag, increment)},
		arena: arena,
	}
}

// NewDictionary creates a Dictionary vector over payload with the
// given selection (row i reads payload[selection[i]]).
func NewDictionary(arena *types.Arena, payload []types.Value, selection []int32) *Vector {
	t := types.Simple(types.NA)
	if len(payload) > 0 {
		t = payload[0].Type()
	}
	return &Vector{
		Type: t, Capacity: len(selection), Encoding: Dictionary,
		Data: payload, Selection: selection, arena: arena,
	}
}

// GetValue returns the logical value at row i, decoding the
// vector's Encoding as needed.
func (v *Vector) GetValue(i int) types.Value {
	switch v.Encoding {
	case Flat:
		if v.Validity != nil && !v.Validity[i] {
			return types.NewNull(v.Type)
		}
		return v.Data[i]
	case Constant:
		return v.Data[0]
	case Sequence:
		start := v.Data[0].AsInt64()
		incr := v.Data[1].AsInt64()
		return types.NewInt(v.Type.Tag, start+int64(i)*incr)
	case Dictionary:
		return v.Data[v.Selection[i]]
	}
	return types.NewNull(v.Type)
}

// SetValue writes val at row i, casting to the vector's type if it
// doesn't already match, and switching a non-Flat vector to Flat on
// first write (mutation always materializes).
func (v *Vector) SetValue(i int, val types.Value) {
	v.ensureFlat()
	if !val.Type().Equal(v.Type) && !val.IsNull() {
		val = types.CastAs(v.arena, val, v.Type)
	}
	v.Data[i] = val
	v.Validity[i] = !val.IsNull()
}

// SetNull marks row i invalid.
func (v *Vector) SetNull(i int) {
	v.ensureFlat()
	v.Validity[i] = false
	v.Data[i] = types.NewNull(v.Type)
}

// IsValid reports whether row i is non-null.
func (v *Vector) IsValid(i int) bool {
	switch v.Encoding {
	case Flat:
		return v.Validity == nil || v.Validity[i]
	default:
		return !v.GetValue(i).IsNull()
	}
}

func (v *Vector) ensureFlat() {
	if v.Encoding == Flat {
		if v.Validity == nil {
			v.Validity = make([]bool, v.Capacity)
			for i := range v.Validity {
				v.Validity[i] = true
			}
		}
		return
	}
	flat := v.Flatten()
	*v = *flat
}

// Flatten returns a Flat copy of v regardless of its current Encoding.
func (v *Vector) Flatten() *Vector {
	if v.Encoding == Flat {
		return v
	}
	out := NewFlat(v.arena, v.Type, v.Capacity)
	for i := 0; i < v.Capacity; i++ {
		val := v.GetValue(i)
		out.Data[i] = val
		out.Validity[i] = !val.IsNull()
	}
	return out
}

// Slice returns a new Flat vector covering rows [offset, offset+length).
func (v *Vector) Slice(offset, length int) *Vector {
	out := NewFlat(v.arena, v.Type, length)
	for i := 0; i < length; i++ {
		val := v.GetValue(offset + i)
		out.Data[i] = val
		out.Validity[i] = !val.IsNull()
	}
	return out
}
