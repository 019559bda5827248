package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/catalog"
)

func TestSchema_Text(t *testing.T) {
	out, err := executeCommand(t, "", "schema", "Bookmark")
	require.NoError(t, err)

	assert.Contains(t, out, "Bookmark\n")
	assert.Regexp(t, `id\s+String\s+@id @default\(cuid\)`, out)
	assert.Regexp(t, `clickCount\s+Int\s+@default\(0\)`, out)
	assert.Regexp(t, `user\s+-> User \(one\) fields \[userId\] references \[id\]`, out)
	assert.Contains(t, out, "fingerprint: "+catalog.MustDefault().Registry.Fingerprint())
}

func TestSchema_AllEntitiesJSON(t *testing.T) {
	out, err := executeCommand(t, "", "schema", "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	require.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	entities := data["entities"].(map[string]any)
	assert.Len(t, entities, 11)
	assert.Contains(t, entities, "FeedEntryMedia")
	assert.Equal(t, catalog.MustDefault().Registry.Fingerprint(), data["fingerprint"])
}

func TestSchema_UnknownEntity(t *testing.T) {
	out, err := executeCommand(t, "", "schema", "Bookmarks", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, `unknown entity "Bookmarks"`, resp.Error.Message)
}

func TestSchema_SchemaDir(t *testing.T) {
	dir := writeCatalog(t, map[string]string{"notes.cue": notesCatalog})

	out, err := executeCommand(t, "", "schema", "--schema-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Note\n")
	assert.NotContains(t, out, "Bookmark")
}

func TestSchema_InvalidCatalog(t *testing.T) {
	dir := writeCatalog(t, map[string]string{
		"notes.cue": "package notes\nentity: Note: fields: title: type: \"String\"\n",
	})

	out, err := executeCommand(t, "", "schema", "--schema-dir", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E104", resp.Error.Code)
	assert.Equal(t, "failed to load schema", resp.Error.Message)
}
