package predicate

import (
	"github.com/cuemby/quilldb/pkg/kernel"
	"github.com/cuemby/quilldb/pkg/types"
)

// ValueExpr is a compiled scalar sub-expression: a comparison operand,
// a function-call argument, or an arithmetic operand (§4.8).
type ValueExpr interface {
	eval(pair *EvalPair) (types.Value, bool)
}

// ColumnRef reads a Key's value out of the evaluation pair.
type ColumnRef struct{ Key Key }

func (c ColumnRef) eval(pair *EvalPair) (types.Value, bool) { return resolve(c.Key, pair) }

// Literal is a constant value baked in at compile time.
type Literal struct{ Value types.Value }

func (l Literal) eval(pair *EvalPair) (types.Value, bool) { return l.Value, true }

// Param reads a previously bound parameter value by id.
type Param struct{ ID int }

func (p Param) eval(pair *EvalPair) (types.Value, bool) {
	v, ok := pair.Params[p.ID]
	return v, ok
}

// ArithExpr evaluates Left <Op> Right via the value system's static
// arithmetic (§4.8 "arithmetic sub-expressions").
type ArithExpr struct {
	Op          types.BinaryOp
	Left, Right ValueExpr
	Arena       *types.Arena
}

func (a ArithExpr) eval(pair *EvalPair) (types.Value, bool) {
	lv, ok := a.Left.eval(pair)
	if !ok {
		return types.Value{}, false
	}
	rv, ok := a.Right.eval(pair)
	if !ok {
		return types.Value{}, false
	}
	return types.Arithmetic(a.Arena, a.Op, lv, rv), true
}

// FuncCallExpr evaluates a registered function against its compiled
// argument sub-expressions, bridging into the kernel registry's row
// kernels (§4.8 "function call").
type FuncCallExpr struct {
	UID  kernel.FunctionUID
	Args []ValueExpr
	Ctx  *kernel.Context
}

func (f FuncCallExpr) eval(pair *EvalPair) (types.Value, bool) {
	fn, ok := f.Ctx.Registry.Lookup(f.UID)
	if !ok {
		return types.Value{}, false
	}
	argVals := make([]types.Value, len(f.Args))
	argTypes := make([]types.ComplexLogicalType, len(f.Args))
	for i, a := range f.Args {
		v, ok := a.eval(pair)
		if !ok {
			return types.Value{}, false
		}
		argVals[i] = v
		argTypes[i] = v.Type()
	}
	exec, st := kernel.Init(fn, argTypes, nil, f.Ctx)
	if !st.Ok() {
		return types.Value{}, false
	}
	result, st := exec.ExecuteRow(argVals)
	if !st.Ok() {
		return types.Value{}, false
	}
	return result, true
}
