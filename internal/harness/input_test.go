package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"empty", "  \n", nil},
		{"json object", `{"take": 3, "where": {"score": 1.5}}`, map[string]any{"take": int64(3), "where": map[string]any{"score": 1.5}}},
		{"json large integer stays exact", `{"id": 9007199254740993}`, map[string]any{"id": int64(9007199254740993)}},
		{"json array", `[{"title": "asc"}]`, []any{map[string]any{"title": "asc"}}},
		{"yaml", "where:\n  title: Go\ntake: 2\n", map[string]any{"where": map[string]any{"title": "Go"}, "take": int64(2)}},
		{"yaml timestamp stays text", "gte: 2024-01-01T00:00:00Z\n", map[string]any{"gte": "2024-01-01T00:00:00Z"}},
		{"yaml null", "settings: null\n", map[string]any{"settings": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInput([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInput_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"broken json", `{"take": }`, "parse JSON input"},
		{"trailing json", `{} {}`, "trailing data"},
		{"broken yaml", "where: [\n", "parse YAML input"},
		{"non-string key", "1: a\n", "not a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInput([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
