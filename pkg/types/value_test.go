package types

import (
	"math/big"
	"testing"
)

func TestRoundTripScalar(t *testing.T) {
	arena := NewArena("test")
	cases := []Value{
		NewBool(true),
		NewInt(INTEGER, -7),
		NewUint(UBIGINT, 42),
		NewFloat64(3.5),
		NewString(arena, "hello"),
		NewHugeint(arena, big.NewInt(123456789)),
	}
	for _, v := range cases {
		cloned := v.Clone(arena)
		if !Equals(v, cloned) {
			t.Errorf("Clone(%v) = %v, want equal", v, cloned)
		}
	}
}

func TestPromoteTypeWidening(t *testing.T) {
	cases := []struct {
		a, b, want LogicalType
	}{
		{INTEGER, BIGINT, BIGINT},
		{INTEGER, UINTEGER, INTEGER},
		{INTEGER, FLOAT, FLOAT},
		{FLOAT, DOUBLE, DOUBLE},
		{BIGINT, BIGINT, BIGINT},
	}
	for _, c := range cases {
		if got := PromoteType(c.a, c.b); got != c.want {
			t.Errorf("PromoteType(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareCommutativity(t *testing.T) {
	a := NewInt(INTEGER, 3)
	b := NewInt(BIGINT, 5)
	if !LessThan(a, b) {
		t.Error("expected a < b")
	}
	if Compare(b, a) != More {
		t.Error("expected b > a, comparison not commutative")
	}
}

func TestCompareNullMinimal(t *testing.T) {
	n := NewNull(Simple(INTEGER))
	v := NewInt(INTEGER, 0)
	if Compare(n, v) != Less {
		t.Error("NA should sort below a non-null value")
	}
	if Compare(n, n) != Equal {
		t.Error("two NA values should compare equal")
	}
}

func TestArithmeticDivideByZero(t *testing.T) {
	arena := NewArena("test")
	a := NewInt(INTEGER, 10)
	zero := NewInt(INTEGER, 0)
	result := Arithmetic(arena, OpDivide, a, zero)
	if result.IsNull() {
		t.Fatal("divide by zero should return a typed zero, not null")
	}
	if result.AsInt64() != 0 {
		t.Errorf("10 / 0 = %d, want 0", result.AsInt64())
	}
}

func TestArithmeticMixedWidth(t *testing.T) {
	arena := NewArena("test")
	a := NewInt(INTEGER, 2)
	b := NewInt(BIGINT, 3)
	sum := Arithmetic(arena, OpSum, a, b)
	if sum.Type().Tag != BIGINT {
		t.Errorf("sum type = %v, want BIGINT", sum.Type().Tag)
	}
	if sum.AsInt64() != 5 {
		t.Errorf("sum = %d, want 5", sum.AsInt64())
	}
}

func TestCastAsInvalidBecomesNull(t *testing.T) {
	arena := NewArena("test")
	s := NewString(arena, "not-a-number")
	cast := CastAs(arena, s, Simple(INTEGER))
	if !cast.IsNull() {
		t.Errorf("casting %q to INTEGER should be null, got %v", s.AsString(), cast)
	}
}

func TestStructEqual(t *testing.T) {
	a := StructOf([]string{"x", "y"}, []ComplexLogicalType{Simple(INTEGER), Simple(STRING_LITERAL)})
	b := StructOf([]string{"x", "y"}, []ComplexLogicalType{Simple(INTEGER), Simple(STRING_LITERAL)})
	if !a.Equal(b) {
		t.Error("identical struct shapes should be Equal")
	}
}
