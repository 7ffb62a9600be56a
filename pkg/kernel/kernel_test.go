package kernel

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

func intChunk(arena *types.Arena, tag types.LogicalType, vals []int64) *vector.Chunk {
	c := vector.NewChunk(arena, []types.ComplexLogicalType{types.Simple(tag)}, len(vals))
	for i, v := range vals {
		c.SetValue(0, i, types.NewInt(tag, v))
	}
	c.SetCardinality(len(vals))
	return c
}

func runAggregate(t *testing.T, uid FunctionUID, argType types.ComplexLogicalType, chunk *vector.Chunk) types.Value {
	t.Helper()
	arena := types.NewArena("test")
	ctx := &Context{Arena: arena, Registry: DefaultRegistry()}
	fn, ok := DefaultRegistry().Lookup(uid)
	if !ok {
		t.Fatalf("function uid %d not registered", uid)
	}
	exec, st := Init(fn, []types.ComplexLogicalType{argType}, nil, ctx)
	if !st.Ok() {
		t.Fatalf("init: %v", st)
	}
	if st := exec.Consume(chunk, chunk.Cardinality()); !st.Ok() {
		t.Fatalf("consume: %v", st)
	}
	val, st := exec.FinalizeAggregate()
	if !st.Ok() {
		t.Fatalf("finalize: %v", st)
	}
	return val
}

func TestSumBigintColumn(t *testing.T) {
	arena := types.NewArena("test")
	chunk := intChunk(arena, types.BIGINT, []int64{1, 2, 3, 4})
	got := runAggregate(t, SumUID, types.Simple(types.BIGINT), chunk)
	if got.AsInt64() != 10 {
		t.Errorf("sum = %d, want 10", got.AsInt64())
	}
}

func TestSumEmptyColumnReturnsTypedZero(t *testing.T) {
	arena := types.NewArena("test")
	chunk := vector.NewChunk(arena, []types.ComplexLogicalType{types.Simple(types.BIGINT)}, 0)
	chunk.SetCardinality(0)
	got := runAggregate(t, SumUID, types.Simple(types.BIGINT), chunk)
	if got.IsNull() {
		t.Error("sum over empty input must not be NULL")
	}
	if got.AsInt64() != 0 {
		t.Errorf("sum = %d, want typed zero 0", got.AsInt64())
	}
}

func TestMinMax(t *testing.T) {
	arena := types.NewArena("test")
	chunk := intChunk(arena, types.INTEGER, []int64{5, -1, 9, 3})

	min := runAggregate(t, MinUID, types.Simple(types.INTEGER), chunk)
	if min.AsInt64() != -1 {
		t.Errorf("min = %d, want -1", min.AsInt64())
	}

	chunk2 := intChunk(arena, types.INTEGER, []int64{5, -1, 9, 3})
	max := runAggregate(t, MaxUID, types.Simple(types.INTEGER), chunk2)
	if max.AsInt64() != 9 {
		t.Errorf("max = %d, want 9", max.AsInt64())
	}
}

func TestCountIgnoresNulls(t *testing.T) {
	arena := types.NewArena("test")
	chunk := vector.NewChunk(arena, []types.ComplexLogicalType{types.Simple(types.INTEGER)}, 3)
	chunk.SetValue(0, 0, types.NewInt(types.INTEGER, 1))
	chunk.Columns[0].SetNull(1)
	chunk.SetValue(0, 2, types.NewInt(types.INTEGER, 3))
	chunk.SetCardinality(3)

	got := runAggregate(t, CountUID, types.Simple(types.INTEGER), chunk)
	if got.AsUint64() != 2 {
		t.Errorf("count = %d, want 2", got.AsUint64())
	}
	if !got.Type().Equal(types.Simple(types.UBIGINT)) {
		t.Errorf("count type = %v, want UBIGINT", got.Type())
	}
}

func TestAvgDividesSumByCount(t *testing.T) {
	arena := types.NewArena("test")
	chunk := intChunk(arena, types.INTEGER, []int64{2, 4, 6})
	got := runAggregate(t, AvgUID, types.Simple(types.INTEGER), chunk)
	if got.AsFloat64() != 4 {
		t.Errorf("avg = %v, want 4", got.AsFloat64())
	}
}

func TestAvgOverEmptyIsNull(t *testing.T) {
	arena := types.NewArena("test")
	chunk := vector.NewChunk(arena, []types.ComplexLogicalType{types.Simple(types.INTEGER)}, 0)
	chunk.SetCardinality(0)
	got := runAggregate(t, AvgUID, types.Simple(types.INTEGER), chunk)
	if !got.IsNull() {
		t.Error("avg over empty input should be NULL")
	}
}

func TestDispatchExactRejectsWrongArity(t *testing.T) {
	fn, _ := DefaultRegistry().Lookup(SumUID)
	_, st := fn.DispatchExact([]types.ComplexLogicalType{
		types.Simple(types.INTEGER), types.Simple(types.INTEGER),
	})
	if st.Ok() {
		t.Error("expected arity mismatch to fail")
	}
}

func TestDispatchExactRejectsNonNumeric(t *testing.T) {
	fn, _ := DefaultRegistry().Lookup(SumUID)
	_, st := fn.DispatchExact([]types.ComplexLogicalType{types.Simple(types.STRING_LITERAL)})
	if st.Ok() {
		t.Error("expected sum over a string argument to fail dispatch")
	}
}
