package vector

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/types"
)

func TestFlatSetGetValue(t *testing.T) {
	arena := types.NewArena("test")
	v := NewFlat(arena, types.Simple(types.INTEGER), 4)
	v.SetValue(0, types.NewInt(types.INTEGER, 7))
	v.SetNull(1)
	if v.GetValue(0).AsInt64() != 7 {
		t.Errorf("row 0 = %v, want 7", v.GetValue(0))
	}
	if v.IsValid(1) {
		t.Error("row 1 should be null")
	}
	if !v.IsValid(0) {
		t.Error("row 0 should be valid")
	}
}

func TestConstantVectorFlatten(t *testing.T) {
	arena := types.NewArena("test")
	c := NewConstant(arena, types.NewInt(types.INTEGER, 9), 3)
	flat := c.Flatten()
	for i := 0; i < 3; i++ {
		if flat.GetValue(i).AsInt64() != 9 {
			t.Errorf("row %d = %v, want 9", i, flat.GetValue(i))
		}
	}
}

func TestSequenceVector(t *testing.T) {
	arena := types.NewArena("test")
	s := NewSequence(arena, types.Simple(types.BIGINT), 100, 1, 5)
	for i := 0; i < 5; i++ {
		if got := s.GetValue(i).AsInt64(); got != int64(100+i) {
			t.Errorf("row %d = %d, want %d", i, got, 100+i)
		}
	}
}

func TestDictionaryVector(t *testing.T) {
	arena := types.NewArena("test")
	payload := []types.Value{
		types.NewString(arena, "a"),
		types.NewString(arena, "b"),
	}
	d := NewDictionary(arena, payload, []int32{1, 0, 1, 1})
	want := []string{"b", "a", "b", "b"}
	for i, w := range want {
		if got := d.GetValue(i).AsString(); got != w {
			t.Errorf("row %d = %q, want %q", i, got, w)
		}
	}
}

func TestSetValueMaterializesNonFlat(t *testing.T) {
	arena := types.NewArena("test")
	c := NewConstant(arena, types.NewInt(types.INTEGER, 1), 3)
	c.SetValue(1, types.NewInt(types.INTEGER, 99))
	if c.Encoding != Flat {
		t.Fatal("SetValue should materialize a Constant vector to Flat")
	}
	if c.GetValue(0).AsInt64() != 1 || c.GetValue(1).AsInt64() != 99 || c.GetValue(2).AsInt64() != 1 {
		t.Errorf("unexpected values after materialization: %v %v %v", c.GetValue(0), c.GetValue(1), c.GetValue(2))
	}
}

func TestChunkCardinalityAndSetValue(t *testing.T) {
	arena := types.NewArena("test")
	ch := NewChunk(arena, []types.ComplexLogicalType{types.Simple(types.INTEGER), types.Simple(types.STRING_LITERAL)}, 8)
	ch.SetValue(0, 0, types.NewInt(types.INTEGER, 1))
	ch.SetValue(1, 0, types.NewString(arena, "x"))
	ch.SetCardinality(1)

	if ch.Cardinality() != 1 {
		t.Errorf("cardinality = %d, want 1", ch.Cardinality())
	}
	if ch.GetValue(0, 0).AsInt64() != 1 {
		t.Error("column 0 row 0 mismatch")
	}
	if ch.GetValue(1, 0).AsString() != "x" {
		t.Error("column 1 row 0 mismatch")
	}
}

func TestChunkSetValueBadCastBecomesNull(t *testing.T) {
	arena := types.NewArena("test")
	ch := NewChunk(arena, []types.ComplexLogicalType{types.Simple(types.INTEGER)}, 4)
	ch.SetValue(0, 0, types.NewString(arena, "not-a-number"))
	if !ch.GetValue(0, 0).IsNull() {
		t.Error("uncastable value should be stored as null, not propagate the source type")
	}
}

func TestChunkSliceCarriesRowIDs(t *testing.T) {
	arena := types.NewArena("test")
	ch := NewChunk(arena, []types.ComplexLogicalType{types.Simple(types.INTEGER)}, 10)
	ch.SetCardinality(10)
	sub := ch.Slice(2, 3)
	if sub.Cardinality() != 3 {
		t.Fatalf("sliced cardinality = %d, want 3", sub.Cardinality())
	}
	if sub.RowIDs.GetValue(0).AsInt64() != 2 {
		t.Errorf("sliced row id 0 = %v, want 2", sub.RowIDs.GetValue(0))
	}
}
