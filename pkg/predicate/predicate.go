package predicate

import (
	"regexp"

	"github.com/cuemby/quilldb/pkg/types"
)

// CompareOp names one of §4.8's comparison operators.
type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Gt
	Gte
	Lt
	Lte
)

// Expr is an uncompiled node of a compare_expression tree.
type Expr interface {
	compile() Predicate
}

// Predicate is a compiled expression: a closure over an EvalPair.
type Predicate func(pair *EvalPair) bool

// Compile turns an Expr tree into its callable Predicate (§4.8).
func Compile(e Expr) Predicate { return e.compile() }

// And is the logical conjunction of its children.
type And struct{ Children []Expr }

func (a And) compile() Predicate {
	compiled := make([]Predicate, len(a.Children))
	for i, c := range a.Children {
		compiled[i] = c.compile()
	}
	return func(pair *EvalPair) bool {
		for _, p := range compiled {
			if !p(pair) {
				return false
			}
		}
		return true
	}
}

// Or is the logical disjunction of its children.
type Or struct{ Children []Expr }

func (o Or) compile() Predicate {
	compiled := make([]Predicate, len(o.Children))
	for i, c := range o.Children {
		compiled[i] = c.compile()
	}
	return func(pair *EvalPair) bool {
		for _, p := range compiled {
			if p(pair) {
				return true
			}
		}
		return false
	}
}

// Not negates its child.
type Not struct{ Child Expr }

func (n Not) compile() Predicate {
	p := n.Child.compile()
	return func(pair *EvalPair) bool { return !p(pair) }
}

// Comparison is a typed eq/ne/gt/gte/lt/lte node over two operands
// addressed by Key. LeftType/RightType pin the physical-type pair the
// comparator dispatch table is built against.
type Comparison struct {
	Op                  CompareOp
	Left, Right         ValueExpr
	LeftType, RightType types.ComplexLogicalType
}

func (c Comparison) compile() Predicate {
	cmp := pickComparator(c.LeftType.Tag, c.RightType.Tag)
	op := c.Op
	left, right := c.Left, c.Right
	return func(pair *EvalPair) bool {
		lv, ok := left.eval(pair)
		if !ok {
			return false
		}
		rv, ok := right.eval(pair)
		if !ok {
			return false
		}
		if lv.IsNull() || rv.IsNull() {
			return false
		}
		res := cmp(lv, rv)
		switch op {
		case Eq:
			return res == types.Equal
		case Ne:
			return res != types.Equal
		case Gt:
			return res == types.More
		case Gte:
			return res != types.Less
		case Lt:
			return res == types.Less
		case Lte:
			return res != types.More
		default:
			return false
		}
	}
}

// Regex matches Left's string value against `.*<Pattern>.*`. A
// non-string left side, or an undeducible/missing operand, is false
// (§4.8).
type Regex struct {
	Left    ValueExpr
	Pattern string
}

func (r Regex) compile() Predicate {
	re := regexp.MustCompile(".*" + r.Pattern + ".*")
	left := r.Left
	return func(pair *EvalPair) bool {
		v, ok := left.eval(pair)
		if !ok || v.IsNull() || v.Type().Tag != types.STRING_LITERAL {
			return false
		}
		return re.MatchString(v.AsString())
	}
}

// ValuePredicate wraps a boolean-producing ValueExpr (typically a
// FuncCallExpr whose registered function returns BOOLEAN) as a leaf
// Expr (§4.8 "function call").
type ValuePredicate struct{ Expr ValueExpr }

func (v ValuePredicate) compile() Predicate {
	e := v.Expr
	return func(pair *EvalPair) bool {
		val, ok := e.eval(pair)
		if !ok || val.IsNull() {
			return false
		}
		return val.AsBool()
	}
}
