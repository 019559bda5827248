package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-100), "-100"},
		{"max int64", IRInt(9223372036854775807), "9223372036854775807"},
		{"float", IRFloat(1.5), "1.5"},
		{"integral float", IRFloat(3), "3"},
		{"bool true", IRBool(true), "true"},
		{"null", IRNull{}, "null"},
		{"go nil", nil, "null"},
		{"db null marker", DbNull, `"DbNull"`},
		{"json null marker", JsonNull, `"JsonNull"`},
		{"time", NewIRTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)), `"2024-03-01T12:00:00Z"`},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"array of ints", IRArray{IRInt(1), IRInt(2), IRInt(3)}, "[1,2,3]"},
		{"go string slice", []string{"b", "a"}, `["b","a"]`},
		{"simple object", IRObject{"a": IRInt(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": IRInt(2),
		"beta":  map[string]any{"y": true, "x": nil},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"x":null,"y":true},"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// UTF-8 byte order puts U+E000 before U+10000; UTF-16 order does not,
	// because U+10000 encodes as the surrogate 0xD800.
	obj := IRObject{
		"\uE000":     IRInt(1),
		"\U00010000": IRInt(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(IRString("<a href='x'>&</a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a href='x'>&</a>"`, string(result))
	assert.NotContains(t, string(result), `\u003c`)
	assert.NotContains(t, string(result), `\u0026`)
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": IRFloat(posInf())})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-finite")
}

func TestMarshalCanonicalRejectsUnsupported(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	result1, err := MarshalCanonical(map[string]any{composed: composed})
	require.NoError(t, err)
	result2, err := MarshalCanonical(map[string]any{decomposed: decomposed})
	require.NoError(t, err)

	assert.Equal(t, result1, result2)
}

func TestMarshalCanonicalLineSeparatorsNotEscaped(t *testing.T) {
	result, err := MarshalCanonical(IRString("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))
	assert.NotContains(t, string(result), `\u2028`)
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	result, err := MarshalCanonical(IRString(`literal \u2028 and actual` + "\u2028"))
	require.NoError(t, err)
	assert.Equal(t, `"literal \\u2028 and actual`+"\u2028"+`"`, string(result))
}

func TestMarshalCanonicalIdempotent(t *testing.T) {
	obj := map[string]any{
		"where": map[string]any{"AND": []any{map[string]any{"a": map[string]any{"equals": int64(1)}}}},
		"take":  int64(10),
	}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	second, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
