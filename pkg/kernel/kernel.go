package kernel

import (
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

// Context is the exec-context every kernel call runs under: the arena
// values it may allocate from and the registry it may recurse into
// for nested function calls (§4.7, §5 "global default exec-context").
type Context struct {
	Arena    *types.Arena
	Registry *Registry
}

// Kind discriminates the three kernel shapes of §4.7 without virtual
// dispatch: callers switch on Kind rather than type-asserting.
type Kind int

const (
	VectorKind Kind = iota
	AggregateKind
	RowKind
)

// VectorExecFunc runs a vector kernel over n rows of inputs, writing
// results into output.
type VectorExecFunc func(ctx *Context, inputs []*vector.Vector, n int, output *vector.Vector) Status

// VectorFinalizeFunc optionally combines a vector kernel's batched
// output into the chunk the function call is building.
type VectorFinalizeFunc func(ctx *Context, n int, chunk *vector.Chunk) Status

// AggregateState is the opaque accumulator an aggregate kernel's
// Init/Consume/Merge/Finalize thread through a single group.
type AggregateState interface{}

// AggregateInitFunc creates a fresh accumulator for one group.
type AggregateInitFunc func(ctx *Context, args []types.ComplexLogicalType) AggregateState

// AggregateConsumeFunc folds n rows of chunk into state.
type AggregateConsumeFunc func(ctx *Context, state AggregateState, chunk *vector.Chunk, n int) Status

// AggregateMergeFunc folds from's partial state into into's.
type AggregateMergeFunc func(ctx *Context, from, into AggregateState) Status

// AggregateFinalizeFunc emits state's single-row result value.
type AggregateFinalizeFunc func(ctx *Context, state AggregateState) (types.Value, Status)

// RowExecFunc evaluates a row kernel over one row of already-extracted
// scalar arguments, returning a single scalar result (§4.7).
type RowExecFunc func(ctx *Context, args []types.Value) (types.Value, Status)

// Kernel is one dispatch candidate inside a Function: a Signature plus
// exactly one of the three execution shapes, selected by Kind.
type Kernel struct {
	Kind      Kind
	Signature Signature

	// VectorKind fields.
	Execute  VectorExecFunc
	Finalize VectorFinalizeFunc

	// AggregateKind fields. Init is mandatory (§4.7).
	Init     AggregateInitFunc
	Consume  AggregateConsumeFunc
	Merge    AggregateMergeFunc
	AggFinal AggregateFinalizeFunc

	// RowKind field.
	Row RowExecFunc
}
