package nulls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/verror"
)

func TestNormalize_Write(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  ir.IRValue
	}{
		{"absent", nil, ir.DbNull},
		{"ir null", ir.IRNull{}, ir.DbNull},
		{"db token", "DbNull", ir.DbNull},
		{"json token", "JsonNull", ir.JsonNull},
		{"document", map[string]any{"theme": "dark"}, ir.IRObject{"theme": ir.IRString("dark")}},
		{"plain string", "dark", ir.IRString("dark")},
		{"number", float64(3), ir.IRInt(3)},
		{"array with null", []any{nil, true}, ir.IRArray{ir.IRNull{}, ir.IRBool(true)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(Write, tt.input, verror.Root("settings"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_AnyNullRejectedOnWrite(t *testing.T) {
	_, err := Normalize(Write, "AnyNull", verror.Root("data").Key("settings"))
	require.Error(t, err)
	assert.True(t, verror.IsShapeMismatch(err))

	ve, _ := verror.As(err)
	assert.Equal(t, "data.settings", ve.Path.String())
	assert.Contains(t, ve.Message, "use one of [DbNull JsonNull]")

	_, err = Normalize(Write, ir.AnyNull, nil)
	assert.True(t, verror.IsShapeMismatch(err))
}

func TestNormalize_Filter(t *testing.T) {
	for token, want := range map[string]ir.NullMarker{
		"DbNull":   ir.DbNull,
		"JsonNull": ir.JsonNull,
		"AnyNull":  ir.AnyNull,
	} {
		got, err := Normalize(Filter, token, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, token)
	}
}

func TestNormalize_DbNullConsistentAcrossContexts(t *testing.T) {
	w, err := Normalize(Write, "DbNull", nil)
	require.NoError(t, err)
	f, err := Normalize(Filter, "DbNull", nil)
	require.NoError(t, err)
	assert.Equal(t, w, f)
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, ctx := range []Context{Write, Filter} {
		for _, m := range []ir.NullMarker{ir.DbNull, ir.JsonNull, ir.AnyNull} {
			if ctx == Write && m == ir.AnyNull {
				continue
			}
			once, err := Normalize(ctx, m, nil)
			require.NoError(t, err)
			twice, err := Normalize(ctx, once, nil)
			require.NoError(t, err)
			assert.Equal(t, m, once)
			assert.Equal(t, once, twice)
		}
	}
}

func TestNormalize_MarkersAreDistinct(t *testing.T) {
	db, _ := Normalize(Write, "DbNull", nil)
	js, _ := Normalize(Write, "JsonNull", nil)
	assert.False(t, ir.Equal(db, js))
}

func TestNormalize_UnsupportedValue(t *testing.T) {
	_, err := Normalize(Write, struct{}{}, verror.Root("metadata"))
	assert.True(t, verror.IsShapeMismatch(err))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"DbNull", "JsonNull"}, Tokens(Write))
	assert.Contains(t, Tokens(Filter), "AnyNull")
}
