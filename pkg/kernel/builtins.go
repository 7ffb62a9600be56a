package kernel

import (
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

// sumAvgState is shared by sum and avg: avg is sum divided by a row
// count at finalize time, so both accumulate the same running total.
type sumAvgState struct {
	typ   types.LogicalType
	total types.Value
	count int64
	any   bool
}

func newSumAvgState(ctx *Context, args []types.ComplexLogicalType) *sumAvgState {
	return &sumAvgState{typ: args[0].Tag}
}

func sumAvgConsume(ctx *Context, st *sumAvgState, chunk *vector.Chunk, n int) Status {
	col := chunk.Columns[0]
	for i := 0; i < n; i++ {
		v := col.GetValue(i)
		if v.IsNull() {
			continue
		}
		st.count++
		if !st.any {
			st.total = v
			st.any = true
			continue
		}
		st.total = types.Arithmetic(ctx.Arena, types.OpSum, st.total, v)
	}
	return Status{}
}

func sumAvgMerge(ctx *Context, from, into *sumAvgState) Status {
	into.count += from.count
	if !from.any {
		return Status{}
	}
	if !into.any {
		into.total = from.total
		into.any = true
		return Status{}
	}
	into.total = types.Arithmetic(ctx.Arena, types.OpSum, into.total, from.total)
	return Status{}
}

// sumFunction is the SUM aggregate: requires a numeric argument,
// returns the widest-numeric-promoted running total, and a typed zero
// (not NULL) over an empty or all-NULL column.
func sumFunction() *Function {
	return &Function{
		Name:    "sum",
		NumArgs: 1,
		Kernels: []Kernel{{
			Kind: AggregateKind,
			Signature: Signature{
				Inputs: []InputType{NumericType()},
				Output: ResolvedOutput(SameAsFirst),
			},
			Init: func(ctx *Context, args []types.ComplexLogicalType) AggregateState {
				return newSumAvgState(ctx, args)
			},
			Consume: func(ctx *Context, state AggregateState, chunk *vector.Chunk, n int) Status {
				return sumAvgConsume(ctx, state.(*sumAvgState), chunk, n)
			},
			Merge: func(ctx *Context, from, into AggregateState) Status {
				return sumAvgMerge(ctx, from.(*sumAvgState), into.(*sumAvgState))
			},
			AggFinal: func(ctx *Context, state AggregateState) (types.Value, Status) {
				st := state.(*sumAvgState)
				if !st.any {
					return zeroOf(st.typ), Status{}
				}
				return st.total, Status{}
			},
		}},
	}
}

// avgFunction is AVG: same running total as sum, but divides by the
// non-NULL row count at finalize. An empty or all-NULL input yields
// SQL-NULL, since there is no typed zero average.
func avgFunction() *Function {
	return &Function{
		Name:    "avg",
		NumArgs: 1,
		Kernels: []Kernel{{
			Kind: AggregateKind,
			Signature: Signature{
				Inputs: []InputType{NumericType()},
				Output: FixedOutput(types.Simple(types.DOUBLE)),
			},
			Init: func(ctx *Context, args []types.ComplexLogicalType) AggregateState {
				return newSumAvgState(ctx, args)
			},
			Consume: func(ctx *Context, state AggregateState, chunk *vector.Chunk, n int) Status {
				return sumAvgConsume(ctx, state.(*sumAvgState), chunk, n)
			},
			Merge: func(ctx *Context, from, into AggregateState) Status {
				return sumAvgMerge(ctx, from.(*sumAvgState), into.(*sumAvgState))
			},
			AggFinal: func(ctx *Context, state AggregateState) (types.Value, Status) {
				st := state.(*sumAvgState)
				if !st.any || st.count == 0 {
					return types.NewNull(types.Simple(types.DOUBLE)), Status{}
				}
				return types.NewFloat64(st.total.AsFloat64Generic() / float64(st.count)), Status{}
			},
		}},
	}
}

// extremeState backs both MIN and MAX: they differ only in which
// CompareResult keeps the incumbent.
type extremeState struct {
	typ   types.LogicalType
	value types.Value
	any   bool
	want  types.CompareResult // Less keeps min, More keeps max
}

func extremeConsume(ctx *Context, st *extremeState, chunk *vector.Chunk, n int) Status {
	col := chunk.Columns[0]
	for i := 0; i < n; i++ {
		v := col.GetValue(i)
		if v.IsNull() {
			continue
		}
		if !st.any {
			st.value = v
			st.any = true
			continue
		}
		if types.Compare(v, st.value) == st.want {
			st.value = v
		}
	}
	return Status{}
}

func extremeMerge(from, into *extremeState) Status {
	if !from.any {
		return Status{}
	}
	if !into.any {
		into.value = from.value
		into.any = true
		return Status{}
	}
	if types.Compare(from.value, into.value) == into.want {
		into.value = from.value
	}
	return Status{}
}

func minFunction() *Function {
	return &Function{
		Name:    "min",
		NumArgs: 1,
		Kernels: []Kernel{{
			Kind: AggregateKind,
			Signature: Signature{
				Inputs: []InputType{NumericType()},
				Output: ResolvedOutput(SameAsFirst),
			},
			Init: func(ctx *Context, args []types.ComplexLogicalType) AggregateState {
				return &extremeState{typ: args[0].Tag, want: types.Less}
			},
			Consume: func(ctx *Context, state AggregateState, chunk *vector.Chunk, n int) Status {
				return extremeConsume(ctx, state.(*extremeState), chunk, n)
			},
			Merge: func(ctx *Context, from, into AggregateState) Status {
				return extremeMerge(from.(*extremeState), into.(*extremeState))
			},
			AggFinal: func(ctx *Context, state AggregateState) (types.Value, Status) {
				st := state.(*extremeState)
				if !st.any {
					return zeroOf(st.typ), Status{}
				}
				return st.value, Status{}
			},
		}},
	}
}

func maxFunction() *Function {
	return &Function{
		Name:    "max",
		NumArgs: 1,
		Kernels: []Kernel{{
			Kind: AggregateKind,
			Signature: Signature{
				Inputs: []InputType{NumericType()},
				Output: ResolvedOutput(SameAsFirst),
			},
			Init: func(ctx *Context, args []types.ComplexLogicalType) AggregateState {
				return &extremeState{typ: args[0].Tag, want: types.More}
			},
			Consume: func(ctx *Context, state AggregateState, chunk *vector.Chunk, n int) Status {
				return extremeConsume(ctx, state.(*extremeState), chunk, n)
			},
			Merge: func(ctx *Context, from, into AggregateState) Status {
				return extremeMerge(from.(*extremeState), into.(*extremeState))
			},
			AggFinal: func(ctx *Context, state AggregateState) (types.Value, Status) {
				st := state.(*extremeState)
				if !st.any {
					return zeroOf(st.typ), Status{}
				}
				return st.value, Status{}
			},
		}},
	}
}

// countState tracks a plain row count, ignoring NULLs.
type countState struct {
	n int64
}

// countFunction is COUNT: it accepts any single argument type and
// always returns UBIGINT, counting non-NULL rows.
func countFunction() *Function {
	return &Function{
		Name:    "count",
		NumArgs: 1,
		Kernels: []Kernel{{
			Kind: AggregateKind,
			Signature: Signature{
				Inputs: []InputType{AnyType()},
				Output: FixedOutput(types.Simple(types.UBIGINT)),
			},
			Init: func(ctx *Context, args []types.ComplexLogicalType) AggregateState {
				return &countState{}
			},
			Consume: func(ctx *Context, state AggregateState, chunk *vector.Chunk, n int) Status {
				st := state.(*countState)
				col := chunk.Columns[0]
				for i := 0; i < n; i++ {
					if col.IsValid(i) {
						st.n++
					}
				}
				return Status{}
			},
			Merge: func(ctx *Context, from, into AggregateState) Status {
				into.(*countState).n += from.(*countState).n
				return Status{}
			},
			AggFinal: func(ctx *Context, state AggregateState) (types.Value, Status) {
				return types.NewUint(types.UBIGINT, uint64(state.(*countState).n)), Status{}
			},
		}},
	}
}

// zeroOf returns the typed zero value for t, used when an aggregate
// with no matching rows must still produce a value rather than NULL
// (§4.5's "divide/aggregate over empty input yields typed zero" rule).
func zeroOf(t types.LogicalType) types.Value {
	switch {
	case t.IsFloating():
		return types.NewFloat64(0)
	case t.IsSigned():
		return types.NewInt(t, 0)
	case t.IsInteger():
		return types.NewUint(t, 0)
	default:
		return types.NewInt(types.BIGINT, 0)
	}
}
