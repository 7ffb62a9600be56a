package types

import "fmt"

// LogicalType is the type tag carried by every value and column.
type LogicalType int

const (
	NA LogicalType = iota
	BOOLEAN
	TINYINT
	SMALLINT
	INTEGER
	BIGINT
	HUGEINT
	UTINYINT
	USMALLINT
	UINTEGER
	UBIGINT
	UHUGEINT
	FLOAT
	DOUBLE
	DECIMAL
	TIMESTAMP_SEC
	TIMESTAMP_MS
	TIMESTAMP_US
	TIMESTAMP_NS
	STRING_LITERAL
	BLOB
	POINTER
	ARRAY
	LIST
	MAP
	STRUCT
	UNION
	VARIANT
	ENUM
)

var typeNames = map[LogicalType]string{
	NA:             "NA",
	BOOLEAN:        "BOOLEAN",
	TINYINT:        "TINYINT",
	SMALLINT:       "SMALLINT",
	INTEGER:        "INTEGER",
	BIGINT:         "BIGINT",
	HUGEINT:        "HUGEINT",
	UTINYINT:       "UTINYINT",
	USMALLINT:      "USMALLINT",
	UINTEGER:       "UINTEGER",
	UBIGINT:        "UBIGINT",
	UHUGEINT:       "UHUGEINT",
	FLOAT:          "FLOAT",
	DOUBLE:         "DOUBLE",
	DECIMAL:        "DECIMAL",
	TIMESTAMP_SEC:  "TIMESTAMP_SEC",
	TIMESTAMP_MS:   "TIMESTAMP_MS",
	TIMESTAMP_US:   "TIMESTAMP_US",
	TIMESTAMP_NS:   "TIMESTAMP_NS",
	STRING_LITERAL: "STRING_LITERAL",
	BLOB:           "BLOB",
	POINTER:        "POINTER",
	ARRAY:          "ARRAY",
	LIST:           "LIST",
	MAP:            "MAP",
	STRUCT:         "STRUCT",
	UNION:          "UNION",
	VARIANT:        "VARIANT",
	ENUM:           "ENUM",
}

func (t LogicalType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("LogicalType(%d)", int(t))
}

// IsNumeric reports whether t is any integer, decimal or float type.
func (t LogicalType) IsNumeric() bool {
	return t.IsInteger() || t.IsFloating() || t == DECIMAL
}

// IsInteger reports whether t is a signed or unsigned integer type.
func (t LogicalType) IsInteger() bool {
	switch t {
	case TINYINT, SMALLINT, INTEGER, BIGINT, HUGEINT,
		UTINYINT, USMALLINT, UINTEGER, UBIGINT, UHUGEINT:
		return true
	}
	return false
}

// IsSigned reports whether t is a signed integer type.
func (t LogicalType) IsSigned() bool {
	switch t {
	case TINYINT, SMALLINT, INTEGER, BIGINT, HUGEINT:
		return true
	}
	return false
}

// IsFloating reports whether t is FLOAT or DOUBLE.
func (t LogicalType) IsFloating() bool {
	return t == FLOAT || t == DOUBLE
}

// IsTemporal reports whether t is one of the TIMESTAMP_* variants.
func (t LogicalType) IsTemporal() bool {
	switch t {
	case TIMESTAMP_SEC, TIMESTAMP_MS, TIMESTAMP_US, TIMESTAMP_NS:
		return true
	}
	return false
}

// IsComposite reports whether t carries child values rather than an
// inline scalar payload.
func (t LogicalType) IsComposite() bool {
	switch t {
	case ARRAY, LIST, MAP, STRUCT, UNION:
		return true
	}
	return false
}

// Width returns the bit width of an integer/float type, for use in
// promotion ordering. Composite and string-like types return 0.
func (t LogicalType) Width() int {
	switch t {
	case TINYINT, UTINYINT:
		return 8
	case SMALLINT, USMALLINT:
		return 16
	case INTEGER, UINTEGER, FLOAT:
		return 32
	case BIGINT, UBIGINT, DOUBLE, DECIMAL:
		return 64
	case HUGEINT, UHUGEINT:
		return 128
	}
	return 0
}

// temporalScaleNanos is the number of nanoseconds one unit of the
// timestamp variant represents, used to convert between scales.
var temporalScaleNanos = map[LogicalType]int64{
	TIMESTAMP_SEC: 1_000_000_000,
	TIMESTAMP_MS:  1_000_000,
	TIMESTAMP_US:  1_000,
	TIMESTAMP_NS:  1,
}

// TypeExtension carries the extra parameters a complex_logical_type
// may need beyond its tag: decimal precision, enum entries, array
// length, and child types for composite types.
type TypeExtension struct {
	DecimalWidth int
	DecimalScale int
	EnumEntries  []string
	ArrayLength  int
	// Children holds LIST/ARRAY element type (len 1), MAP key/value
	// types (len 2, key then value), STRUCT fields, or UNION variants.
	Children []ComplexLogicalType
	// FieldNames names each entry in Children for STRUCT and UNION.
	FieldNames []string
}

// ComplexLogicalType is a LogicalType plus an optional column alias
// and an optional extension describing decimal/enum/array/composite
// parameters.
type ComplexLogicalType struct {
	Tag       LogicalType
	Alias     string
	Extension *TypeExtension
}

// Simple builds a ComplexLogicalType with no alias or extension.
func Simple(tag LogicalType) ComplexLogicalType {
	return ComplexLogicalType{Tag: tag}
}

// WithAlias returns a copy of t with Alias set.
func (t ComplexLogicalType) WithAlias(alias string) ComplexLogicalType {
	t.Alias = alias
	return t
}

// Decimal builds a DECIMAL(width, scale) type.
func Decimal(width, scale int) ComplexLogicalType {
	return ComplexLogicalType{Tag: DECIMAL, Extension: &TypeExtension{DecimalWidth: width, DecimalScale: scale}}
}

// Enum builds an ENUM type with the given ordered entries.
func Enum(entries []string) ComplexLogicalType {
	cp := make([]string, len(entries))
	copy(cp, entries)
	return ComplexLogicalType{Tag: ENUM, Extension: &TypeExtension{EnumEntries: cp}}
}

// ArrayOf builds an ARRAY(elem, n) type.
func ArrayOf(elem ComplexLogicalType, n int) ComplexLogicalType {
	return ComplexLogicalType{Tag: ARRAY, Extension: &TypeExtension{ArrayLength: n, Children: []ComplexLogicalType{elem}}}
}

// ListOf builds a LIST(elem) type.
func ListOf(elem ComplexLogicalType) ComplexLogicalType {
	return ComplexLogicalType{Tag: LIST, Extension: &TypeExtension{Children: []ComplexLogicalType{elem}}}
}

// MapOf builds a MAP(key, value) type.
func MapOf(key, value ComplexLogicalType) ComplexLogicalType {
	return ComplexLogicalType{Tag: MAP, Extension: &TypeExtension{Children: []ComplexLogicalType{key, value}}}
}

// StructOf builds a STRUCT(fields...) type with parallel name/type slices.
func StructOf(names []string, fields []ComplexLogicalType) ComplexLogicalType {
	return ComplexLogicalType{Tag: STRUCT, Extension: &TypeExtension{FieldNames: names, Children: fields}}
}

// UnionOf builds a UNION(tag, variants...) type.
func UnionOf(names []string, variants []ComplexLogicalType) ComplexLogicalType {
	return ComplexLogicalType{Tag: UNION, Extension: &TypeExtension{FieldNames: names, Children: variants}}
}

// Equal reports whether two complex types describe the same shape,
// ignoring alias.
func (t ComplexLogicalType) Equal(other ComplexLogicalType) bool {
	if t.Tag != other.Tag {
		return false
	}
	switch t.Tag {
	case DECIMAL:
		return t.Extension.DecimalWidth == other.Extension.DecimalWidth &&
			t.Extension.DecimalScale == other.Extension.DecimalScale
	case ENUM:
		if len(t.Extension.EnumEntries) != len(other.Extension.EnumEntries) {
			return false
		}
		for i := range t.Extension.EnumEntries {
			if t.Extension.EnumEntries[i] != other.Extension.EnumEntries[i] {
				return false
			}
		}
		return true
	case ARRAY:
		return t.Extension.ArrayLength == other.Extension.ArrayLength &&
			t.Extension.Children[0].Equal(other.Extension.Children[0])
	case LIST, MAP:
		if len(t.Extension.Children) != len(other.Extension.Children) {
			return false
		}
		for i := range t.Extension.Children {
			if !t.Extension.Children[i].Equal(other.Extension.Children[i]) {
				return false
			}
		}
		return true
	case STRUCT, UNION:
		if len(t.Extension.Children) != len(other.Extension.Children) {
			return false
		}
		for i := range t.Extension.Children {
			if t.Extension.FieldNames[i] != other.Extension.FieldNames[i] {
				return false
			}
			if !t.Extension.Children[i].Equal(other.Extension.Children[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t ComplexLogicalType) String() string {
	if t.Alias != "" {
		return fmt.Sprintf("%s(%s)", t.Tag, t.Alias)
	}
	return t.Tag.String()
}
