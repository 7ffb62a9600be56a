package predicate

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
)

func rowChunk(arena *types.Arena, colName string, val types.Value) *vector.Chunk {
	ct := val.Type().WithAlias(colName)
	c := vector.NewChunk(arena, []types.ComplexLogicalType{ct}, 1)
	c.SetValue(0, 0, val)
	c.SetCardinality(1)
	return c
}

func TestComparisonEqOnLeftKey(t *testing.T) {
	arena := types.NewArena("test")
	left := rowChunk(arena, "age", types.NewInt(types.INTEGER, 30))
	pair := &EvalPair{Left: left, RowLeft: 0}

	p := Compile(Comparison{
		Op:        Eq,
		Left:      ColumnRef{Key: Key{Path: []string{"age"}, Side: SideLeft}},
		Right:     Literal{Value: types.NewInt(types.INTEGER, 30)},
		LeftType:  types.Simple(types.INTEGER),
		RightType: types.Simple(types.INTEGER),
	})
	if !p(pair) {
		t.Error("expected age == 30 to match")
	}
}

func TestDeduceSideFindsRightChunk(t *testing.T) {
	arena := types.NewArena("test")
	left := rowChunk(arena, "a", types.NewInt(types.INTEGER, 1))
	right := rowChunk(arena, "b", types.NewInt(types.INTEGER, 5))
	pair := &EvalPair{Left: left, RowLeft: 0, Right: right, RowRight: 0, HasRight: true}

	p := Compile(Comparison{
		Op:        Gt,
		Left:      ColumnRef{Key: NewKey("b")},
		Right:     Literal{Value: types.NewInt(types.INTEGER, 1)},
		LeftType:  types.Simple(types.INTEGER),
		RightType: types.Simple(types.INTEGER),
	})
	if !p(pair) {
		t.Error("expected deduced right-side key b > 1 to match")
	}
}

func TestDeduceSideUndeducibleIsFalse(t *testing.T) {
	arena := types.NewArena("test")
	left := rowChunk(arena, "a", types.NewInt(types.INTEGER, 1))
	pair := &EvalPair{Left: left, RowLeft: 0}

	p := Compile(Comparison{
		Op:        Eq,
		Left:      ColumnRef{Key: NewKey("missing")},
		Right:     Literal{Value: types.NewInt(types.INTEGER, 1)},
		LeftType:  types.Simple(types.INTEGER),
		RightType: types.Simple(types.INTEGER),
	})
	if p(pair) {
		t.Error("undeducible key must make the predicate false")
	}
}

func TestAndOrNot(t *testing.T) {
	arena := types.NewArena("test")
	left := rowChunk(arena, "n", types.NewInt(types.INTEGER, 7))
	pair := &EvalPair{Left: left, RowLeft: 0}

	gtFive := Comparison{
		Op: Gt, Left: ColumnRef{Key: NewKey("n")}, Right: Literal{Value: types.NewInt(types.INTEGER, 5)},
		LeftType: types.Simple(types.INTEGER), RightType: types.Simple(types.INTEGER),
	}
	ltThree := Comparison{
		Op: Lt, Left: ColumnRef{Key: NewKey("n")}, Right: Literal{Value: types.NewInt(types.INTEGER, 3)},
		LeftType: types.Simple(types.INTEGER), RightType: types.Simple(types.INTEGER),
	}

	if !Compile(And{Children: []Expr{gtFive}})(pair) {
		t.Error("AND(gt5) should match")
	}
	if Compile(And{Children: []Expr{gtFive, ltThree}})(pair) {
		t.Error("AND(gt5, lt3) should not match")
	}
	if !Compile(Or{Children: []Expr{gtFive, ltThree}})(pair) {
		t.Error("OR(gt5, lt3) should match")
	}
	if !Compile(Not{Child: ltThree})(pair) {
		t.Error("NOT(lt3) should match for n=7")
	}
}

func TestRegexMatchesSubstring(t *testing.T) {
	arena := types.NewArena("test")
	left := rowChunk(arena, "name", types.NewString(arena, "hello world"))
	pair := &EvalPair{Left: left, RowLeft: 0}

	p := Compile(Regex{Left: ColumnRef{Key: NewKey("name")}, Pattern: "lo wo"})
	if !p(pair) {
		t.Error("expected substring match")
	}

	p2 := Compile(Regex{Left: ColumnRef{Key: NewKey("name")}, Pattern: "zzz"})
	if p2(pair) {
		t.Error("expected no match")
	}
}

func TestRegexNonStringIsFalse(t *testing.T) {
	arena := types.NewArena("test")
	left := rowChunk(arena, "n", types.NewInt(types.INTEGER, 1))
	pair := &EvalPair{Left: left, RowLeft: 0}

	p := Compile(Regex{Left: ColumnRef{Key: NewKey("n")}, Pattern: "1"})
	if p(pair) {
		t.Error("regex over a non-string operand must be false")
	}
}

func TestArithmeticSubExpression(t *testing.T) {
	arena := types.NewArena("test")
	left := rowChunk(arena, "n", types.NewInt(types.INTEGER, 4))
	pair := &EvalPair{Left: left, RowLeft: 0}

	sum := ArithExpr{
		Op: types.OpSum, Arena: arena,
		Left:  ColumnRef{Key: NewKey("n")},
		Right: Literal{Value: types.NewInt(types.INTEGER, 6)},
	}
	p := Compile(Comparison{
		Op: Eq, Left: sum, Right: Literal{Value: types.NewInt(types.INTEGER, 10)},
		LeftType: types.Simple(types.INTEGER), RightType: types.Simple(types.INTEGER),
	})
	if !p(pair) {
		t.Error("expected n+6 == 10 to match for n=4")
	}
}
