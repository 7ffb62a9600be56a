package types

import (
	"math/big"
	"strconv"
)

// CastAs converts v to target. Numeric-to-numeric and numeric-to/from
// string conversions are supported; an unsupported or malformed
// conversion returns a null of the target type rather than an error,
// matching §4.3's "invalid source rows become null" rule for storage
// type promotion. Casting a null value always returns a null of the
// target type.
func CastAs(arena *Arena, v Value, target ComplexLogicalType) Value {
	if v.IsNull() {
		return NewNull(target)
	}
	if v.typ.Equal(target) {
		return v
	}
	switch {
	case target.Tag.IsInteger() && target.Tag.IsSigned():
		i, ok := toInt64(v)
		if !ok {
			return NewNull(target)
		}
		return NewInt(target.Tag, i)
	case target.Tag.IsInteger() && !target.Tag.IsSigned() && target.Tag != UHUGEINT:
		u, ok := toUint64(v)
		if !ok {
			return NewNull(target)
		}
		return NewUint(target.Tag, u)
	case target.Tag == HUGEINT:
		b, ok := toBigInt(v)
		if !ok {
			return NewNull(target)
		}
		return NewHugeint(arena, b)
	case target.Tag == UHUGEINT:
		b, ok := toBigInt(v)
		if !ok || b.Sign() < 0 {
			return NewNull(target)
		}
		return NewUhugeint(arena, b)
	case target.Tag == FLOAT:
		f, ok := toFloat64(v)
		if !ok {
			return NewNull(target)
		}
		return NewFloat32(float32(f))
	case target.Tag == DOUBLE:
		f, ok := toFloat64(v)
		if !ok {
			return NewNull(target)
		}
		return NewFloat64(f)
	case target.Tag == DECIMAL:
		f, ok := toFloat64(v)
		if !ok {
			return NewNull(target)
		}
		width, scale := 18, 0
		if target.Extension != nil {
			width, scale = target.Extension.DecimalWidth, target.Extension.DecimalScale
		}
		mul := 1.0
		for i := 0; i < scale; i++ {
			mul *= 10
		}
		return NewDecimal(width, scale, int64(f*mul))
	case target.Tag == STRING_LITERAL:
		return NewString(arena, v.String())
	case target.Tag == BOOLEAN:
		b, ok := toBool(v)
		if !ok {
			return NewNull(target)
		}
		return NewBool(b)
	default:
		return NewNull(target)
	}
}

func toBool(v Value) (bool, bool) {
	switch v.typ.Tag {
	case BOOLEAN:
		return v.AsBool(), true
	case STRING_LITERAL:
		b, err := strconv.ParseBool(v.AsString())
		return b, err == nil
	default:
		if v.typ.Tag.IsNumeric() {
			return v.AsFloat64Generic() != 0, true
		}
	}
	return false, false
}

func toInt64(v Value) (int64, bool) {
	switch {
	case v.typ.Tag == BOOLEAN:
		if v.AsBool() {
			return 1, true
		}
		return 0, true
	case v.typ.Tag.IsSigned() || v.typ.Tag == DECIMAL:
		return v.i64, true
	case v.typ.Tag == HUGEINT:
		if v.big != nil && v.big.IsInt64() {
			return v.big.Int64(), true
		}
		return 0, false
	case v.typ.Tag.IsInteger():
		return int64(v.u64), true
	case v.typ.Tag.IsFloating():
		return int64(v.f64), true
	case v.typ.Tag == STRING_LITERAL:
		i, err := strconv.ParseInt(v.AsString(), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func toUint64(v Value) (uint64, bool) {
	switch {
	case v.typ.Tag == BOOLEAN:
		if v.AsBool() {
			return 1, true
		}
		return 0, true
	case v.typ.Tag.IsSigned():
		if v.i64 < 0 {
			return 0, false
		}
		return uint64(v.i64), true
	case v.typ.Tag.IsInteger():
		return v.u64, true
	case v.typ.Tag.IsFloating():
		if v.f64 < 0 {
			return 0, false
		}
		return uint64(v.f64), true
	case v.typ.Tag == STRING_LITERAL:
		u, err := strconv.ParseUint(v.AsString(), 10, 64)
		return u, err == nil
	}
	return 0, false
}

func toFloat64(v Value) (float64, bool) {
	switch v.typ.Tag {
	case STRING_LITERAL:
		f, err := strconv.ParseFloat(v.AsString(), 64)
		return f, err == nil
	case BOOLEAN:
		if v.AsBool() {
			return 1, true
		}
		return 0, true
	default:
		if v.typ.Tag.IsNumeric() {
			return v.AsFloat64Generic(), true
		}
	}
	return 0, false
}

func toBigInt(v Value) (*big.Int, bool) {
	switch {
	case v.typ.Tag == HUGEINT || v.typ.Tag == UHUGEINT:
		return v.AsBigInt(), true
	case v.typ.Tag.IsSigned():
		return big.NewInt(v.i64), true
	case v.typ.Tag.IsInteger():
		return new(big.Int).SetUint64(v.u64), true
	case v.typ.Tag == STRING_LITERAL:
		b, ok := new(big.Int).SetString(v.AsString(), 10)
		return b, ok
	case v.typ.Tag.IsFloating():
		bf := big.NewFloat(v.f64)
		b, _ := bf.Int(nil)
		return b, true
	}
	return nil, false
}
