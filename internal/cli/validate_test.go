package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinitions(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
}

func TestValidateValidDefinitions(t *testing.T) {
	tmpDir := t.TempDir()

	writeDefinitions(t, tmpDir, "blocks.cue", `
package defs

blocks: paragraph: {
	name:  "core/paragraph"
	title: "Paragraph"
	attributes: content: {type: "string", default: ""}
	transformsTo: ["core/heading"]
}

blocks: heading: {
	name:  "core/heading"
	title: "Heading"
	attributes: {
		content: {type: "string", default: ""}
		level: {type: "integer", default: 2}
	}
	transformsTo: ["core/paragraph"]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "✓ All definitions valid")
}

func TestValidateValidDefinitionsJSON(t *testing.T) {
	tmpDir := t.TempDir()

	writeDefinitions(t, tmpDir, "blocks.cue", `
package defs

blocks: quote: {
	name:  "core/quote"
	title: "Quote"
	attributes: value: {type: "string", default: ""}
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, buf.String(), "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestValidateMissingTitle(t *testing.T) {
	tmpDir := t.TempDir()

	writeDefinitions(t, tmpDir, "bad.cue", `
package defs

blocks: untitled: {
	name: "core/untitled"
	attributes: content: {type: "string"}
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, buf.String(), "Validation failed")
	assert.Contains(t, buf.String(), "E102")
	assert.Contains(t, buf.String(), "title")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateMalformedTypeName(t *testing.T) {
	tmpDir := t.TempDir()

	writeDefinitions(t, tmpDir, "bad.cue", `
package defs

blocks: bad: {
	name:  "no-namespace"
	title: "Bad"
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "E101")
	assert.Contains(t, buf.String(), "no-namespace")
}

func TestValidateDefaultKindMismatch(t *testing.T) {
	tmpDir := t.TempDir()

	writeDefinitions(t, tmpDir, "bad.cue", `
package defs

blocks: heading: {
	name:  "core/heading"
	title: "Heading"
	attributes: level: {type: "integer", default: "two"}
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "E104")
	assert.Contains(t, buf.String(), "level")
}

func TestValidateInvalidAttributeKind(t *testing.T) {
	tmpDir := t.TempDir()

	writeDefinitions(t, tmpDir, "bad.cue", `
package defs

blocks: bad: {
	name:  "core/bad"
	title: "Bad"
	attributes: price: {type: "float"}
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "E103")
	assert.Contains(t, buf.String(), "float")
}

func TestValidateDuplicateTransformTarget(t *testing.T) {
	tmpDir := t.TempDir()

	writeDefinitions(t, tmpDir, "bad.cue", `
package defs

blocks: paragraph: {
	name:  "core/paragraph"
	title: "Paragraph"
	transformsTo: ["core/heading", "core/heading"]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "E106")
	assert.Contains(t, buf.String(), "duplicate")
}

func TestValidateInvalidDefinitionJSON(t *testing.T) {
	tmpDir := t.TempDir()

	writeDefinitions(t, tmpDir, "bad.cue", `
package defs

blocks: untitled: {
	name: "core/untitled"
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	jsonErr := json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, jsonErr)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E102", resp.Error.Code)
}

func TestValidateMultipleErrors(t *testing.T) {
	tmpDir := t.TempDir()

	// Two definitions, each with its own problem; both must be reported.
	writeDefinitions(t, tmpDir, "bad.cue", `
package defs

blocks: one: {
	name:  "bad name"
	title: "One"
}

blocks: two: {
	name:  "core/two"
	title: "Two"
	transformsTo: ["also bad"]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)

	output := buf.String()
	assert.Contains(t, output, "Validation failed")
	assert.Contains(t, output, "E101")
	assert.Contains(t, output, "E105")
	assert.Contains(t, err.Error(), "2 error(s)")
}

func TestValidateVerboseOutput(t *testing.T) {
	tmpDir := t.TempDir()

	writeDefinitions(t, tmpDir, "blocks.cue", `
package defs

blocks: paragraph: {
	name:  "core/paragraph"
	title: "Paragraph"
}
`)

	stdoutBuf := &bytes.Buffer{}
	stderrBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf) // Verbose output goes to stderr
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.NoError(t, err)

	// Verbose logs go to stderr to avoid corrupting JSON output
	verboseOutput := stderrBuf.String()
	assert.Contains(t, verboseOutput, "Found")
	assert.Contains(t, verboseOutput, "CUE file(s)")
	assert.Contains(t, verboseOutput, "Validating block definition: paragraph")
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field    string
		expected string
	}{
		{"name", "E101"},
		{"title", "E102"},
		{"attributes.content.type", "E103"},
		{"transformsTo", "E105"},
		{"cue", "E006"},
		{"unknown", "E001"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			code := MapFieldToErrorCode(tt.field)
			assert.Equal(t, tt.expected, code)
		})
	}
}
