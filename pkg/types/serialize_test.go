package types

import (
	"math/big"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	arena := NewArena("test")
	cases := []Value{
		NewNull(Simple(INTEGER)),
		NewBool(true),
		NewInt(BIGINT, -42),
		NewUint(UBIGINT, 42),
		NewHugeint(arena, big.NewInt(-123456789012345)),
		NewUhugeint(arena, big.NewInt(123456789012345)),
		NewFloat64(3.5),
		NewDecimal(18, 2, 12345),
		NewTimestamp(TIMESTAMP_MS, 1700000000000),
		NewString(arena, "hello"),
		NewBlob(arena, []byte{1, 2, 3}),
		NewStructValue(arena, []string{"x", "y"}, []Value{NewInt(INTEGER, 1), NewInt(INTEGER, 2)}),
		NewList(arena, Simple(INTEGER), []Value{NewInt(INTEGER, 1), NewInt(INTEGER, 2), NewInt(INTEGER, 3)}),
	}
	for _, v := range cases {
		got, err := Decode(arena, Encode(v))
		if err != nil {
			t.Fatalf("decode %v: %v", v, err)
		}
		if !got.Type().Equal(v.Type()) {
			t.Errorf("type mismatch: got %v, want %v", got.Type(), v.Type())
		}
		if Compare(got, v) != Equal {
			t.Errorf("round trip mismatch: got %v, want %v", got, v)
		}
	}
}
