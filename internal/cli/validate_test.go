package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptedText(t *testing.T) {
	out, err := executeCommand(t, `{"where": {"name": "go"}}`, "validate", "Tag", "findMany", "-")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Tag.findMany accepted")
	assert.Contains(t, out, `{"where":{"name":{"equals":"go"}}}`)
	assert.Contains(t, out, "fingerprint: ")
}

func TestValidate_AcceptedJSON(t *testing.T) {
	out, err := executeCommand(t, "where:\n  name: go\n", "validate", "Tag", "findMany", "-", "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Tag", data["entity"])
	assert.Equal(t, "findMany", data["operation"])
	assert.Equal(t, map[string]any{"where": map[string]any{"name": map[string]any{"equals": "go"}}}, data["normalized"])
	assert.NotEmpty(t, data["fingerprint"])
}

func TestValidate_FingerprintIgnoresSpelling(t *testing.T) {
	bare, err := executeCommand(t, `{"where": {"name": "go"}}`, "validate", "Tag", "findMany", "-", "--format", "json")
	require.NoError(t, err)
	explicit, err := executeCommand(t, `{"where": {"name": {"equals": "go"}}}`, "validate", "Tag", "findMany", "-", "--format", "json")
	require.NoError(t, err)

	a := decodeResponse(t, bare).Data.(map[string]any)
	b := decodeResponse(t, explicit).Data.(map[string]any)
	assert.Equal(t, a["fingerprint"], b["fingerprint"])
}

func TestValidate_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		entity   string
		op       string
		input    string
		wantKind string
		wantPath string
	}{
		{
			name:     "unknown field",
			entity:   "Bookmark",
			op:       "findMany",
			input:    `{"where": {"titel": "Go"}}`,
			wantKind: "SHAPE_MISMATCH",
			wantPath: "where.titel",
		},
		{
			name:     "partial compound key",
			entity:   "Bookmark",
			op:       "findUnique",
			input:    `{"where": {"url": "https://go.dev"}}`,
			wantKind: "AMBIGUOUS_IDENTITY",
			wantPath: "where",
		},
		{
			name:     "bad sort order",
			entity:   "Bookmark",
			op:       "findMany",
			input:    `{"orderBy": {"clickCount": "up"}}`,
			wantKind: "INVALID_ENUM_VALUE",
			wantPath: "orderBy.clickCount",
		},
		{
			name:     "unknown operation",
			entity:   "Bookmark",
			op:       "findAll",
			input:    `{}`,
			wantKind: "INVALID_ENUM_VALUE",
			wantPath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, tt.input, "validate", tt.entity, tt.op, "-", "--format", "json")
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.True(t, Reported(err))

			resp := decodeResponse(t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantKind, resp.Error.Code)
			details := resp.Error.Details.(map[string]any)
			assert.Equal(t, tt.wantPath, details["path"])
		})
	}
}

func TestValidate_RejectionSegments(t *testing.T) {
	out, err := executeCommand(t, `{"where": {"OR": [{"title": "Go"}, {"nope": 1}]}}`,
		"validate", "Bookmark", "findMany", "-", "--format", "json")
	require.Error(t, err)

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	details := resp.Error.Details.(map[string]any)
	assert.Equal(t, "where.OR[1].nope", details["path"])
	assert.Equal(t, []any{"where", "OR", float64(1), "nope"}, details["segments"])
}

func TestValidate_RejectedText(t *testing.T) {
	out, err := executeCommand(t, `{"where": {"titel": "Go"}}`, "validate", "Bookmark", "findMany", "-")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, `✗ Bookmark.findMany rejected at "where.titel"`)
	assert.Contains(t, out, "Error [SHAPE_MISMATCH]")
}

func TestValidate_InputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "create.yaml")
	content := "data:\n  name: go\n  userId: u1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, err := executeCommand(t, "", "validate", "Tag", "create", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Tag.create accepted")
}

func TestValidate_CommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		input    string
		wantCode string
	}{
		{"missing file", "", filepath.Join(t.TempDir(), "missing.json"), ErrCodeReadFailed},
		{"malformed JSON", `{"where": `, "-", ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, tt.stdin, "validate", "Tag", "findMany", tt.input, "--format", "json")
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeResponse(t, out)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
