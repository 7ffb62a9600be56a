package index

import "github.com/cuemby/quilldb/pkg/types"

// Type names the structural kind of an index (§3.5). single_field is
// the only kind the engine builds today; the tag exists so a future
// composite kind can be added without changing the index_t contract.
type Type int

const (
	SingleField Type = iota
)

// KeySchema is keys_base_storage_t: the ordered list of column paths
// an index's key is built from. A path's first element names a
// top-level column by alias; any remaining elements descend into
// STRUCT fields by name.
type KeySchema struct {
	Paths [][]string
}

// NewKeySchema builds a schema from top-level column names.
func NewKeySchema(columns ...string) KeySchema {
	paths := make([][]string, len(columns))
	for i, c := range columns {
		paths[i] = []string{c}
	}
	return KeySchema{Paths: paths}
}

// NewKeySchemaPaths builds a schema from already-split paths, for keys
// that descend into struct fields (e.g. []string{"address", "city"}).
func NewKeySchemaPaths(paths ...[]string) KeySchema {
	return KeySchema{Paths: paths}
}

// Type reports the schema's structural kind. It returns SingleField
// for every schema, multi-path ones included, since no composite kind
// is defined (see Type).
func (k KeySchema) Type() Type { return SingleField }

// Equal reports whether two schemas name the same paths in the same
// order. index.Engine keys its indexes by name and does not call it.
func (k KeySchema) Equal(other KeySchema) bool {
	if len(k.Paths) != len(other.Paths) {
		return false
	}
	for i, p := range k.Paths {
		op := other.Paths[i]
		if len(p) != len(op) {
			return false
		}
		for j := range p {
			if p[j] != op[j] {
				return false
			}
		}
	}
	return true
}

// Matches reports whether every path in the schema resolves to a
// top-level column present in colTypes (struct-field descent is
// data-dependent and checked at extraction time, not here).
func (k KeySchema) Matches(colTypes []types.ComplexLogicalType) bool {
	for _, p := range k.Paths {
		if findColumn(colTypes, p[0]) < 0 {
			return false
		}
	}
	return true
}

func findColumn(colTypes []types.ComplexLogicalType, alias string) int {
	for i, t := range colTypes {
		if t.Alias == alias {
			return i
		}
	}
	return -1
}

// ExtractKey builds the index key Value for one row: the single
// resolved value for a one-path schema, or a STRUCT combining every
// path's value for a composite schema. Returns false if any path
// fails to resolve against row.
func (k KeySchema) ExtractKey(arena *types.Arena, colTypes []types.ComplexLogicalType, row []types.Value) (types.Value, bool) {
	if len(k.Paths) == 1 {
		return resolvePath(colTypes, row, k.Paths[0])
	}
	vals := make([]types.Value, len(k.Paths))
	names := make([]string, len(k.Paths))
	for i, p := range k.Paths {
		v, ok := resolvePath(colTypes, row, p)
		if !ok {
			return types.Value{}, false
		}
		vals[i] = v
		names[i] = p[len(p)-1]
	}
	return types.NewStructValue(arena, names, vals), true
}

// resolvePath reads path out of row: the top-level column named by
// path[0], descending into STRUCT fields for any remaining elements.
func resolvePath(colTypes []types.ComplexLogicalType, row []types.Value, path []string) (types.Value, bool) {
	col := findColumn(colTypes, path[0])
	if col < 0 {
		return types.Value{}, false
	}
	val := row[col]
	for _, field := range path[1:] {
		ext := val.Type().Extension
		if ext == nil {
			return types.Value{}, false
		}
		idx := -1
		for i, n := range ext.FieldNames {
			if n == field {
				idx = i
				break
			}
		}
		if idx < 0 || idx >= len(val.Children()) {
			return types.Value{}, false
		}
		val = val.Children()[idx]
	}
	return val, true
}
