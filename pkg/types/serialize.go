package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
)

// Encode serializes v (its type and payload) to a self-describing byte
// slice. Paired with Decode, it backs the on-disk index mirror's key
// encoding (pkg/diskindex) and the catalog's stored default values
// (pkg/catalog), and satisfies §8's round-trip invariant:
// Decode(Encode(v)) == v for every tag this package constructs.
func Encode(v Value) []byte {
	e := &encoder{}
	e.putType(v.typ)
	e.putBool(v.null)
	if !v.null {
		e.putValue(v)
	}
	return e.buf
}

// Decode parses bytes produced by Encode, allocating any heap payload
// from arena.
func Decode(arena *Arena, b []byte) (Value, error) {
	d := &decoder{buf: b}
	typ, err := d.getType()
	if err != nil {
		return Value{}, err
	}
	isNull, err := d.getBool()
	if err != nil {
		return Value{}, err
	}
	if isNull {
		return NewNull(typ), nil
	}
	return d.getValue(arena, typ)
}

type encoder struct{ buf []byte }

func (e *encoder) putByte(b byte)   { e.buf = append(e.buf, b) }
func (e *encoder) putBool(b bool)   { if b { e.putByte(1) } else { e.putByte(0) } }
func (e *encoder) putU64(v uint64)  { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *encoder) putI64(v int64)   { e.putU64(uint64(v)) }
func (e *encoder) putInt(v int)     { e.putI64(int64(v)) }
func (e *encoder) putBytes(b []byte) {
	e.putInt(len(b))
	e.buf = append(e.buf, b...)
}
func (e *encoder) putString(s string) { e.putBytes([]byte(s)) }

func (e *encoder) putType(t ComplexLogicalType) {
	e.putByte(byte(t.Tag))
	e.putString(t.Alias)
	if t.Extension == nil {
		e.putBool(false)
		return
	}
	e.putBool(true)
	ext := t.Extension
	e.putInt(ext.DecimalWidth)
	e.putInt(ext.DecimalScale)
	e.putInt(ext.ArrayLength)
	e.putInt(len(ext.EnumEntries))
	for _, s := range ext.EnumEntries {
		e.putString(s)
	}
	e.putInt(len(ext.FieldNames))
	for _, s := range ext.FieldNames {
		e.putString(s)
	}
	e.putInt(len(ext.Children))
	for _, c := range ext.Children {
		e.putType(c)
	}
}

func (e *encoder) putValue(v Value) {
	switch {
	case v.typ.Tag == HUGEINT || v.typ.Tag == UHUGEINT:
		e.putBytes(v.AsBigInt().Bytes())
		e.putBool(v.AsBigInt().Sign() < 0)
	case v.typ.Tag == STRING_LITERAL || v.typ.Tag == BLOB:
		e.putBytes([]byte(v.str))
	case v.typ.Tag == BOOLEAN:
		e.putBool(v.AsBool())
	case v.typ.Tag.IsFloating():
		e.putU64(math.Float64bits(v.f64))
	case v.typ.Tag == DECIMAL:
		e.putI64(v.i64)
	case v.typ.Tag.IsSigned() || v.typ.Tag.IsTemporal() || v.typ.Tag == POINTER || v.typ.Tag == ENUM:
		e.putI64(v.i64)
	case v.typ.Tag.IsInteger():
		e.putU64(v.u64)
	case v.typ.Tag == UNION:
		e.putInt(int(v.i64))
		e.putValue(v.children[0])
	case v.typ.Tag == ARRAY || v.typ.Tag == LIST || v.typ.Tag == STRUCT || v.typ.Tag == MAP:
		e.putInt(len(v.children))
		for _, c := range v.children {
			e.putType(c.typ)
			e.putBool(c.null)
			if !c.null {
				e.putValue(c)
			}
		}
	default:
		// VARIANT and anything else not constructed by this package's
		// New* helpers: no scalar payload to preserve.
	}
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) need(n int) error {
	if d.off+n > len(d.buf) {
		return fmt.Errorf("types: decode: truncated input")
	}
	return nil
}

func (d *decoder) getByte() (byte, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	b := d.buf[d.off]
	d.off++
	return b, nil
}

func (d *decoder) getBool() (bool, error) {
	b, err := d.getByte()
	return b != 0, err
}

func (d *decoder) getU64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.buf[d.off : d.off+8])
	d.off += 8
	return v, nil
}

func (d *decoder) getI64() (int64, error) {
	v, err := d.getU64()
	return int64(v), err
}

func (d *decoder) getInt() (int, error) {
	v, err := d.getI64()
	return int(v), err
}

func (d *decoder) getBytes() ([]byte, error) {
	n, err := d.getInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("types: decode: negative length")
	}
	if err := d.need(n); err != nil {
		return nil, err
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) getString() (string, error) {
	b, err := d.getBytes()
	return string(b), err
}

func (d *decoder) getType() (ComplexLogicalType, error) {
	tagByte, err := d.getByte()
	if err != nil {
		return ComplexLogicalType{}, err
	}
	alias, err := d.getString()
	if err != nil {
		return ComplexLogicalType{}, err
	}
	hasExt, err := d.getBool()
	if err != nil {
		return ComplexLogicalType{}, err
	}
	t := ComplexLogicalType{Tag: LogicalType(tagByte), Alias: alias}
	if !hasExt {
		return t, nil
	}
	ext := &TypeExtension{}
	if ext.DecimalWidth, err = d.getInt(); err != nil {
		return t, err
	}
	if ext.DecimalScale, err = d.getInt(); err != nil {
		return t, err
	}
	if ext.ArrayLength, err = d.getInt(); err != nil {
		return t, err
	}
	n, err := d.getInt()
	if err != nil {
		return t, err
	}
	for i := 0; i < n; i++ {
		s, err := d.getString()
		if err != nil {
			return t, err
		}
		ext.EnumEntries = append(ext.EnumEntries, s)
	}
	if n, err = d.getInt(); err != nil {
		return t, err
	}
	for i := 0; i < n; i++ {
		s, err := d.getString()
		if err != nil {
			return t, err
		}
		ext.FieldNames = append(ext.FieldNames, s)
	}
	if n, err = d.getInt(); err != nil {
		return t, err
	}
	for i := 0; i < n; i++ {
		c, err := d.getType()
		if err != nil {
			return t, err
		}
		ext.Children = append(ext.Children, c)
	}
	t.Extension = ext
	return t, nil
}

func (d *decoder) getValue(arena *Arena, typ ComplexLogicalType) (Value, error) {
	switch {
	case typ.Tag == HUGEINT || typ.Tag == UHUGEINT:
		raw, err := d.getBytes()
		if err != nil {
			return Value{}, err
		}
		neg, err := d.getBool()
		if err != nil {
			return Value{}, err
		}
		big := new(big.Int).SetBytes(raw)
		if neg {
			big.Neg(big)
		}
		if typ.Tag == HUGEINT {
			return NewHugeint(arena, big), nil
		}
		return NewUhugeint(arena, big), nil
	case typ.Tag == STRING_LITERAL:
		s, err := d.getString()
		if err != nil {
			return Value{}, err
		}
		return NewString(arena, s), nil
	case typ.Tag == BLOB:
		b, err := d.getBytes()
		if err != nil {
			return Value{}, err
		}
		return NewBlob(arena, b), nil
	case typ.Tag == BOOLEAN:
		b, err := d.getBool()
		if err != nil {
			return Value{}, err
		}
		return NewBool(b), nil
	case typ.Tag.IsFloating():
		bits, err := d.getU64()
		if err != nil {
			return Value{}, err
		}
		f := math.Float64frombits(bits)
		if typ.Tag == FLOAT {
			return NewFloat32(float32(f)), nil
		}
		return NewFloat64(f), nil
	case typ.Tag == DECIMAL:
		raw, err := d.getI64()
		if err != nil {
			return Value{}, err
		}
		w, s := 18, 0
		if typ.Extension != nil {
			w, s = typ.Extension.DecimalWidth, typ.Extension.DecimalScale
		}
		return NewDecimal(w, s, raw), nil
	case typ.Tag.IsTemporal():
		raw, err := d.getI64()
		if err != nil {
			return Value{}, err
		}
		return NewTimestamp(typ.Tag, raw), nil
	case typ.Tag == POINTER:
		raw, err := d.getI64()
		if err != nil {
			return Value{}, err
		}
		return NewPointer(raw), nil
	case typ.Tag == ENUM:
		raw, err := d.getI64()
		if err != nil {
			return Value{}, err
		}
		return Value{typ: typ, i64: raw}, nil
	case typ.Tag.IsSigned():
		raw, err := d.getI64()
		if err != nil {
			return Value{}, err
		}
		return NewInt(typ.Tag, raw), nil
	case typ.Tag.IsInteger():
		raw, err := d.getU64()
		if err != nil {
			return Value{}, err
		}
		return NewUint(typ.Tag, raw), nil
	case typ.Tag == UNION:
		idx, err := d.getInt()
		if err != nil {
			return Value{}, err
		}
		var variant ComplexLogicalType
		if typ.Extension != nil && idx < len(typ.Extension.Children) {
			variant = typ.Extension.Children[idx]
		}
		active, err := d.getValue(arena, variant)
		if err != nil {
			return Value{}, err
		}
		names := []string{}
		if typ.Extension != nil {
			names = typ.Extension.FieldNames
		}
		variants := []ComplexLogicalType{}
		if typ.Extension != nil {
			variants = typ.Extension.Children
		}
		return NewUnionValue(arena, names, variants, idx, active), nil
	case typ.Tag == ARRAY || typ.Tag == LIST || typ.Tag == STRUCT || typ.Tag == MAP:
		n, err := d.getInt()
		if err != nil {
			return Value{}, err
		}
		children := make([]Value, n)
		for i := 0; i < n; i++ {
			ct, err := d.getType()
			if err != nil {
				return Value{}, err
			}
			isNull, err := d.getBool()
			if err != nil {
				return Value{}, err
			}
			if isNull {
				children[i] = NewNull(ct)
				continue
			}
			cv, err := d.getValue(arena, ct)
			if err != nil {
				return Value{}, err
			}
			children[i] = cv
		}
		return Value{typ: typ, children: cloneChildren(arena, children), arena: arena}, nil
	default:
		return Value{typ: typ}, nil
	}
}
