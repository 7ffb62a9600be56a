package kernel

import (
	"testing"

	"github.com/cuemby/quilldb/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestDispatchExactTable(t *testing.T) {
	sum, ok := DefaultRegistry().Lookup(SumUID)
	assert.True(t, ok, "sum must be registered")

	cases := []struct {
		name string
		args []types.ComplexLogicalType
		ok   bool
	}{
		{"single integer", []types.ComplexLogicalType{types.Simple(types.INTEGER)}, true},
		{"single bigint", []types.ComplexLogicalType{types.Simple(types.BIGINT)}, true},
		{"wrong arity", []types.ComplexLogicalType{types.Simple(types.INTEGER), types.Simple(types.INTEGER)}, false},
		{"non-numeric", []types.ComplexLogicalType{types.Simple(types.STRING_LITERAL)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, st := sum.DispatchExact(tc.args)
			assert.Equal(t, tc.ok, st.Ok(), "status: %v", st)
		})
	}
}
