package scalar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/verror"
)

var stringList = Type{Kind: String, List: true}

func TestListFilter_Predicates(t *testing.T) {
	f, err := ListFilter(stringList, map[string]any{
		"has":      "go",
		"hasEvery": []any{"a", "b"},
		"hasSome":  "c",
		"isEmpty":  false,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, ir.IRString("go"), f.Has)
	assert.Equal(t, []ir.IRValue{ir.IRString("a"), ir.IRString("b")}, f.HasEvery)
	assert.Equal(t, []ir.IRValue{ir.IRString("c")}, f.HasSome)
	require.NotNil(t, f.IsEmpty)
	assert.False(t, *f.IsEmpty)
}

func TestListFilter_BareArrayIsEquals(t *testing.T) {
	f, err := ListFilter(stringList, []any{"x", "y"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ir.IRArray{ir.IRString("x"), ir.IRString("y")}, f.Equals)

	again, err := ListFilter(stringList, f.Wire(), nil)
	require.NoError(t, err)
	assert.Equal(t, f, again)
}

func TestListFilter_ScalarOperatorsRejected(t *testing.T) {
	for _, op := range []string{"contains", "in", "lt", "not"} {
		_, err := ListFilter(stringList, map[string]any{op: "x"}, verror.Root("categories"))
		require.Error(t, err, op)
		assert.True(t, verror.IsShapeMismatch(err), op)
	}

	_, err := ListFilter(stringList, "x", nil)
	assert.True(t, verror.IsShapeMismatch(err))

	_, err = ListFilter(stringList, map[string]any{"has": nil}, nil)
	assert.True(t, verror.IsShapeMismatch(err), "list elements are never null")
}
