package scalar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/verror"
)

var (
	str         = Type{Kind: String}
	nullableStr = Type{Kind: String, Nullable: true}
	integer     = Type{Kind: Int}
	boolean     = Type{Kind: Boolean}
	timestamp   = Type{Kind: DateTime}
)

func TestScalarFilter_BareValueExpandsToEquals(t *testing.T) {
	f, err := ScalarFilter(str, "https://x", verror.Root("url"), Options{})
	require.NoError(t, err)
	assert.Equal(t, &queryir.ScalarFilter{Equals: ir.IRString("https://x")}, f)
}

func TestScalarFilter_ExpansionIsFixedPoint(t *testing.T) {
	inputs := []struct {
		typ   Type
		input any
	}{
		{str, "hello"},
		{integer, float64(5)},
		{boolean, true},
		{nullableStr, nil},
		{timestamp, "2024-05-01T10:00:00Z"},
		{str, map[string]any{"contains": "go", "mode": "insensitive", "not": "x"}},
		{integer, map[string]any{"in": float64(1)}},
	}

	for _, in := range inputs {
		first, err := ScalarFilter(in.typ, in.input, nil, Options{})
		require.NoError(t, err)

		second, err := ScalarFilter(in.typ, first.Wire(), nil, Options{})
		require.NoError(t, err)

		assert.Equal(t, first, second)
	}
}

func TestScalarFilter_Operators(t *testing.T) {
	f, err := ScalarFilter(integer, map[string]any{
		"gt":    float64(1),
		"lte":   float64(10),
		"notIn": []any{float64(3), float64(4)},
	}, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, ir.IRInt(1), f.Gt)
	assert.Equal(t, ir.IRInt(10), f.Lte)
	assert.Equal(t, []ir.IRValue{ir.IRInt(3), ir.IRInt(4)}, f.NotIn)
	assert.Nil(t, f.Equals)
}

func TestScalarFilter_InAcceptsSingleValue(t *testing.T) {
	f, err := ScalarFilter(str, map[string]any{"in": "a"}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []ir.IRValue{ir.IRString("a")}, f.In)
}

func TestScalarFilter_NotIsRecursive(t *testing.T) {
	f, err := ScalarFilter(str, map[string]any{
		"not": map[string]any{"not": map[string]any{"startsWith": "a"}},
	}, nil, Options{})
	require.NoError(t, err)

	require.NotNil(t, f.Not)
	require.NotNil(t, f.Not.Not)
	assert.Equal(t, ir.IRString("a"), f.Not.Not.StartsWith)
}

func TestScalarFilter_Nullability(t *testing.T) {
	f, err := ScalarFilter(nullableStr, map[string]any{"in": []any{"a", nil}}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []ir.IRValue{ir.IRString("a"), ir.IRNull{}}, f.In)

	_, err = ScalarFilter(str, nil, verror.Root("title"), Options{})
	require.Error(t, err)
	assert.True(t, verror.IsShapeMismatch(err))

	_, err = ScalarFilter(str, map[string]any{"in": []any{"a", nil}}, verror.Root("title"), Options{})
	ve, ok := verror.As(err)
	require.True(t, ok)
	assert.Equal(t, "title.in[1]", ve.Path.String())

	_, err = ScalarFilter(nullableStr, map[string]any{"gt": nil}, nil, Options{})
	assert.True(t, verror.IsShapeMismatch(err), "range operators never take null")
}

func TestScalarFilter_DateTime(t *testing.T) {
	f, err := ScalarFilter(timestamp, map[string]any{"gte": "2024-01-02T03:04:05+02:00"}, nil, Options{})
	require.NoError(t, err)
	want := ir.NewIRTime(time.Date(2024, 1, 2, 1, 4, 5, 0, time.UTC))
	assert.True(t, ir.Equal(want, f.Gte))

	_, err = ScalarFilter(timestamp, "yesterday", verror.Root("createdAt"), Options{})
	assert.True(t, verror.IsShapeMismatch(err))
}

func TestScalarFilter_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name     string
		typ      Type
		input    any
		wantPath string
	}{
		{"wrong literal type", integer, "five", "f"},
		{"fractional int", integer, 1.5, "f"},
		{"contains on int", integer, map[string]any{"contains": "1"}, "f.contains"},
		{"lt on boolean", boolean, map[string]any{"lt": true}, "f.lt"},
		{"unknown operator", str, map[string]any{"like": "%x%"}, "f.like"},
		{"aggregates outside having", integer, map[string]any{"_avg": map[string]any{"gt": 1}}, "f._avg"},
		{"nested error path", str, map[string]any{"not": map[string]any{"equals": float64(3)}}, "f.not.equals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScalarFilter(tt.typ, tt.input, verror.Root("f"), Options{})
			require.Error(t, err)
			ve, ok := verror.As(err)
			require.True(t, ok)
			assert.Equal(t, verror.KindShapeMismatch, ve.Kind)
			assert.Equal(t, tt.wantPath, ve.Path.String())
		})
	}
}

func TestScalarFilter_FirstErrorInSortedKeyOrder(t *testing.T) {
	input := map[string]any{"zzz": 1, "aaa": 1, "mmm": 1}
	for i := 0; i < 20; i++ {
		_, err := ScalarFilter(str, input, verror.Root("title"), Options{})
		ve, _ := verror.As(err)
		require.NotNil(t, ve)
		assert.Equal(t, "title.aaa", ve.Path.String())
	}
}

func TestScalarFilter_Mode(t *testing.T) {
	_, err := ScalarFilter(str, map[string]any{"mode": "loose"}, nil, Options{})
	assert.True(t, verror.IsInvalidEnumValue(err))

	f, err := ScalarFilter(str, map[string]any{"mode": "insensitive", "equals": "Go"}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, ModeInsensitive, f.Mode)
}

func TestScalarFilter_SearchIsNFC(t *testing.T) {
	f, err := ScalarFilter(str, map[string]any{"search": "cafe\u0301"}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("caf\u00e9"), f.Search)
}

func TestScalarFilter_Aggregates(t *testing.T) {
	opts := Options{Aggregates: true}

	f, err := ScalarFilter(integer, map[string]any{
		"_avg":   map[string]any{"gt": float64(2)},
		"_count": float64(3),
		"_max":   map[string]any{"lt": float64(100)},
	}, nil, opts)
	require.NoError(t, err)

	assert.Equal(t, ir.IRFloat(2), f.Avg.Gt)
	assert.Equal(t, ir.IRInt(3), f.Count.Equals)
	assert.Equal(t, ir.IRInt(100), f.Max.Lt)
	assert.True(t, f.HasAggregates())
	assert.False(t, f.HasPlainOperators())

	_, err = ScalarFilter(str, map[string]any{"_sum": map[string]any{"gt": 1}}, nil, opts)
	assert.True(t, verror.IsShapeMismatch(err), "_sum needs a numeric field")

	_, err = ScalarFilter(integer, map[string]any{"_avg": map[string]any{"_avg": 1}}, nil, opts)
	assert.True(t, verror.IsShapeMismatch(err), "aggregate sub-filters do not nest")
}

func TestFilter_Dispatch(t *testing.T) {
	c, err := Filter(Type{Kind: String, List: true}, map[string]any{"has": "go"}, nil, Options{})
	require.NoError(t, err)
	assert.IsType(t, &queryir.ListFilter{}, c)

	c, err = Filter(Type{Kind: Json, Nullable: true}, "AnyNull", nil, Options{})
	require.NoError(t, err)
	assert.IsType(t, &queryir.JSONFilter{}, c)

	c, err = Filter(str, "x", nil, Options{})
	require.NoError(t, err)
	assert.IsType(t, &queryir.ScalarFilter{}, c)
}
