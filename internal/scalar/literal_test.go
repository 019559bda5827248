package scalar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/verror"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		input any
		want  ir.IRValue
	}{
		{"string", str, "a", ir.IRString("a")},
		{"int from float", integer, float64(7), ir.IRInt(7)},
		{"int from int", integer, 7, ir.IRInt(7)},
		{"float from int", Type{Kind: Float}, 2, ir.IRFloat(2)},
		{"bool", boolean, false, ir.IRBool(false)},
		{"nullable null", nullableStr, nil, ir.IRNull{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Literal(tt.typ, tt.input, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteValue(t *testing.T) {
	v, err := WriteValue(Type{Kind: Json, Nullable: true}, "JsonNull", nil)
	require.NoError(t, err)
	assert.Equal(t, ir.JsonNull, v)

	_, err = WriteValue(Type{Kind: Json, Nullable: true}, "AnyNull", verror.Root("settings"))
	assert.True(t, verror.IsShapeMismatch(err))

	v, err = WriteValue(stringList, []any{"a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ir.IRArray{ir.IRString("a")}, v)

	_, err = WriteValue(stringList, "a", nil)
	assert.True(t, verror.IsShapeMismatch(err))

	_, err = WriteValue(str, nil, nil)
	assert.True(t, verror.IsShapeMismatch(err))
}
