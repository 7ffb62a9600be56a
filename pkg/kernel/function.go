package kernel

import (
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

// FunctionUID identifies a registered function inside one Registry.
// The built-ins are pre-populated in the fixed order documented on
// DefaultRegistry (§4.7).
type FunctionUID int

// Function is a named collection of same-arity Kernels: the dispatch
// unit of §4.7.
type Function struct {
	Name          string
	NumArgs       int
	Varargs       bool
	Kernels       []Kernel
	OptionsReqd   bool
	DefaultOption any
}

// DispatchExact selects the kernel whose signature matches argTypes
// exactly, in §4.7's dispatch_exact order: an arity mismatch (when the
// function is not varargs) fails fast, then the first structurally
// matching kernel wins.
func (f *Function) DispatchExact(argTypes []types.ComplexLogicalType) (*Kernel, Status) {
	if !f.Varargs && len(argTypes) != f.NumArgs {
		return nil, Fail(ExecutionError, "function %s: arity mismatch: got %d args, want %d", f.Name, len(argTypes), f.NumArgs)
	}
	for i := range f.Kernels {
		if f.Kernels[i].Signature.MatchesInputs(argTypes) {
			return &f.Kernels[i], Status{}
		}
	}
	return nil, Fail(ExecutionError, "function %s: no matching kernel for %v", f.Name, argTypes)
}

// Executor binds one Function's chosen Kernel to an exec Context for
// a single call, holding whatever per-call state the kernel shape
// needs (§4.7).
type Executor struct {
	fn     *Function
	kernel *Kernel
	ctx    *Context

	// AggregateKind state, threaded across Execute calls until Finalize.
	aggState AggregateState
	argTypes []types.ComplexLogicalType
}

// Init resolves options against the function's defaults (failing
// Invalid if options are required and none were given), selects a
// kernel by argTypes, and — for an aggregate kernel — calls Init to
// seed the accumulator (§4.7).
func Init(fn *Function, argTypes []types.ComplexLogicalType, options any, ctx *Context) (*Executor, Status) {
	if fn.OptionsReqd && options == nil && fn.DefaultOption == nil {
		return nil, Fail(Invalid, "function %s: options required", fn.Name)
	}
	if options == nil {
		options = fn.DefaultOption
	}
	kernel, st := fn.DispatchExact(argTypes)
	if !st.Ok() {
		return nil, st
	}
	e := &Executor{fn: fn, kernel: kernel, ctx: ctx, argTypes: argTypes}
	if kernel.Kind == AggregateKind {
		if kernel.Init == nil {
			return nil, Fail(Invalid, "function %s: aggregate kernel missing Init", fn.Name)
		}
		e.aggState = kernel.Init(ctx, argTypes)
	}
	_ = options
	return e, Status{}
}

// ExecuteVector runs a vector kernel over n rows of inputs, writing
// into output. It fails Invalid if the bound kernel is not a vector
// kernel.
func (e *Executor) ExecuteVector(inputs []*vector.Vector, n int, output *vector.Vector) Status {
	if e.kernel.Kind != VectorKind {
		return Fail(Invalid, "function %s: not a vector kernel", e.fn.Name)
	}
	return e.kernel.Execute(e.ctx, inputs, n, output)
}

// FinalizeVector runs the vector kernel's optional batch finalizer, a
// no-op success if the kernel declares none.
func (e *Executor) FinalizeVector(n int, chunk *vector.Chunk) Status {
	if e.kernel.Kind != VectorKind {
		return Fail(Invalid, "function %s: not a vector kernel", e.fn.Name)
	}
	if e.kernel.Finalize == nil {
		return Status{}
	}
	return e.kernel.Finalize(e.ctx, n, chunk)
}

// Consume folds n rows of chunk into the executor's running
// aggregate accumulator.
func (e *Executor) Consume(chunk *vector.Chunk, n int) Status {
	if e.kernel.Kind != AggregateKind {
		return Fail(Invalid, "function %s: not an aggregate kernel", e.fn.Name)
	}
	return e.kernel.Consume(e.ctx, e.aggState, chunk, n)
}

// Merge folds another executor's partial aggregate state into this
// one's, used when combining parallel partial aggregates.
func (e *Executor) Merge(other *Executor) Status {
	if e.kernel.Kind != AggregateKind {
		return Fail(Invalid, "function %s: not an aggregate kernel", e.fn.Name)
	}
	return e.kernel.Merge(e.ctx, other.aggState, e.aggState)
}

// FinalizeAggregate emits the accumulator's single scalar result.
func (e *Executor) FinalizeAggregate() (types.Value, Status) {
	if e.kernel.Kind != AggregateKind {
		return types.Value{}, Fail(Invalid, "function %s: not an aggregate kernel", e.fn.Name)
	}
	return e.kernel.AggFinal(e.ctx, e.aggState)
}

// ExecuteRow evaluates a row kernel over one row of scalar args.
func (e *Executor) ExecuteRow(args []types.Value) (types.Value, Status) {
	if e.kernel.Kind != RowKind {
		return types.Value{}, Fail(Invalid, "function %s: not a row kernel", e.fn.Name)
	}
	return e.kernel.Row(e.ctx, args)
}

// OutputType resolves the bound kernel's output type against argTypes.
func (e *Executor) OutputType() types.ComplexLogicalType {
	return e.kernel.Signature.Output.Resolve(e.argTypes)
}
