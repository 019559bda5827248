package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: tags
setup:
  - entity: User
    data: { id: u1, email: a@example.com }
  - entity: Tag
    data: { id: t1, name: go, userId: u1 }
  - entity: Tag
    data: { id: t2, name: sqlite, userId: u1 }
cases:
  - name: all tags
    entity: Tag
    op: findMany
    input: { orderBy: { name: asc } }
    expect: { ok: true, ids: [t1, t2] }
  - name: count by owner
    entity: Tag
    op: count
    input: { where: { userId: u1 } }
    expect: { ok: true, count: 2 }
  - name: misspelled field
    entity: Tag
    op: findMany
    input: { where: { nmae: go } }
    expect: { error: SHAPE_MISMATCH, path: where.nmae }
`

const failingScenario = `name: wrong expectation
cases:
  - name: accepted input expected to fail
    entity: Tag
    op: findMany
    input: { where: { name: go } }
    expect: { error: SHAPE_MISMATCH }
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestCheck_Passing(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"tags.yaml": passingScenario})

	out, err := executeCommand(t, "", "check", filepath.Join(dir, "tags.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "1 scenarios, 3 cases: 1 passed, 0 failed")
}

func TestCheck_Failing(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"a-tags.yaml":  passingScenario,
		"b-wrong.yaml": failingScenario,
	})

	out, err := executeCommand(t, "", "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, Reported(err))

	assert.Contains(t, out, "✗ wrong expectation")
	assert.Contains(t, out, "Case failed: accepted input expected to fail")
	assert.Contains(t, out, "2 scenarios, 4 cases: 1 passed, 1 failed")
}

func TestCheck_JSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"a-tags.yaml":  passingScenario,
		"b-wrong.yaml": failingScenario,
	})

	out, err := executeCommand(t, "", "check", dir, "--format", "json")
	require.Error(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["total_scenarios"])
	assert.Equal(t, float64(1), data["passed"])
	assert.Equal(t, float64(1), data["failed"])
	failures := data["failures"].([]any)
	require.Len(t, failures, 1)
	assert.Equal(t, "wrong expectation", failures[0].(map[string]any)["scenario"])
}

func TestCheck_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"a-tags.yaml":  passingScenario,
		"b-wrong.yaml": failingScenario,
	})

	out, err := executeCommand(t, "", "check", dir, "--filter", "a-*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 scenarios, 3 cases: 1 passed, 0 failed")
}

func TestCheck_MissingPath(t *testing.T) {
	out, err := executeCommand(t, "", "check", filepath.Join(t.TempDir(), "missing"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestFilterScenarios(t *testing.T) {
	files := []string{"s/cart-add.yaml", "s/cart-remove.yml", "s/feed.yaml"}

	got, err := filterScenarios(files, "cart-*")
	require.NoError(t, err)
	assert.Equal(t, []string{"s/cart-add.yaml", "s/cart-remove.yml"}, got)

	got, err = filterScenarios(files, "")
	require.NoError(t, err)
	assert.Equal(t, files, got)

	_, err = filterScenarios(files, "[")
	assert.Error(t, err)
}
