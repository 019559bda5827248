package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/ir"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "json",
		Writer:  buf,
		TraceID: "trace-1",
	}

	err := formatter.Success(map[string]string{"sql": `"a" < 'b' & c`})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "trace-1", resp.TraceID)
	assert.Equal(t, ir.IRVersion, resp.IRVersion)
	assert.Equal(t, map[string]any{"sql": `"a" < 'b' & c`}, resp.Data)
	assert.Contains(t, buf.String(), `< 'b' & c`, "HTML characters are not escaped")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := RejectionDetails{Entity: "Bookmark", Operation: "findMany", Path: "where.titel"}
	err := formatter.Error("SHAPE_MISMATCH", `unknown key "titel"`, details)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SHAPE_MISMATCH", resp.Error.Code)
	assert.Equal(t, `unknown key "titel"`, resp.Error.Message)
	assert.Equal(t, map[string]any{"entity": "Bookmark", "operation": "findMany", "path": "where.titel"}, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("All scenarios passed"))
	assert.Equal(t, "All scenarios passed\n", buf.String())
}

func TestOutputFormatter_Text(t *testing.T) {
	render := func(w io.Writer) { fmt.Fprintln(w, "rendered") }

	buf := &bytes.Buffer{}
	text := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, text.Text(map[string]int{"n": 1}, render))
	assert.Equal(t, "rendered\n", buf.String())

	buf.Reset()
	js := &OutputFormatter{Format: "json", Writer: buf}
	require.NoError(t, js.Text(map[string]int{"n": 1}, render))
	assert.JSONEq(t, `{"status":"ok","data":{"n":1},"ir_version":"`+ir.IRVersion+`"}`, buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E005", "schema directory not found", map[string]string{"dir": "x"})
	require.NoError(t, err)
	assert.Equal(t, "Error [E005]: schema directory not found\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E005", "schema directory not found", map[string]string{"dir": "x"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E005]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Fail(ExitFailure, "AMBIGUOUS_IDENTITY", "no unique key", nil)
	require.Error(t, err)

	assert.True(t, Reported(err))
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "no unique key", err.Error())
	assert.Contains(t, buf.String(), "Error [AMBIGUOUS_IDENTITY]: no unique key")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			diag := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: diag,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Loading %s", "catalog.cue")

			assert.Empty(t, out.String(), "diagnostics never corrupt JSON output")
			if tt.wantLog {
				assert.Contains(t, diag.String(), "Loading catalog.cue")
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "bad path"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("run: %w", WrapExitError(ExitCommandError, "load", errors.New("x"))), ExitCommandError},
		{"reported", reported{NewExitError(ExitFailure, "rejected")}, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	err := WrapExitError(ExitCommandError, "failed to load config", errors.New("config file not found: x.yaml"))
	assert.Equal(t, "failed to load config: config file not found: x.yaml", err.Error())
	assert.False(t, Reported(err))
}

func TestNewTraceID(t *testing.T) {
	id, err := uuid.Parse(NewTraceID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}
