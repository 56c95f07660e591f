package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// execute runs the root command in a temporary project and returns stdout
// and stderr.
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	c := newCLI()
	c.newLogger = func(bool) (*zap.Logger, error) { return zap.NewNop(), nil }
	root := newRootCommand(c)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--project-root", dir}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestPersonasCmd(t *testing.T) {
	out, _, err := execute(t, t.TempDir(), "personas")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "evidence-clinician")
	assert.Contains(t, out, "Coach Context")
	assert.Contains(t, out, "contextual")
}

func TestAskCmd_Markdown(t *testing.T) {
	out, errOut, err := execute(t, t.TempDir(), "ask", "--prefer", "merge", "I feel tired every afternoon")
	require.NoError(t, err)

	assert.Contains(t, errOut, "Asking: I feel tired every afternoon")
	assert.Contains(t, errOut, "✓")
	assert.Contains(t, out, "## Opinion A: Dr. Evidence")
	assert.Contains(t, out, "# Consolidated opinion")
	assert.Contains(t, out, "Left out for low confidence")
}

func TestAskCmd_JSON(t *testing.T) {
	out, errOut, err := execute(t, t.TempDir(), "ask", "-q", "--format", "json", "--prefer", "B", "I feel tired every afternoon")
	require.NoError(t, err)
	assert.Empty(t, errOut)

	var exp struct {
		SessionID    string               `json:"sessionId"`
		Consolidated opinion.Consolidated `json:"consolidated"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.NotEmpty(t, exp.SessionID)
	assert.Equal(t, opinion.PreferB, exp.Consolidated.Preference)
	assert.Equal(t, "context-coach", exp.Consolidated.PersonaID)
}

func TestAskCmd_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, dir, "ask", "--prefer", "both", "hello")
	assert.ErrorIs(t, err, opinion.ErrInvalidInput)

	_, _, err = execute(t, dir, "ask", "--format", "yaml", "hello")
	assert.Error(t, err)

	_, _, err = execute(t, dir, "ask", "   ")
	assert.ErrorIs(t, err, opinion.ErrInvalidInput)

	_, _, err = execute(t, dir, "ask")
	assert.Error(t, err, "a question is required")
}

func TestConfigFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "personas.yaml"), []byte(`personas:
  - id: solo
    reasoningStyle: evidence-based
    active: true
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dualopinion.yml"), []byte("personasFile: personas.yaml\n"), 0o644))

	out, _, err := execute(t, dir, "personas")
	require.NoError(t, err)
	assert.Contains(t, out, "solo")
	assert.NotContains(t, out, "evidence-clinician")

	_, _, err = execute(t, dir, "ask", "-q", "I feel tired every afternoon")
	assert.ErrorIs(t, err, opinion.ErrInsufficientPersonas)

	t.Setenv("DUALOPINION_MIN_CONFIDENCE", "2")
	_, _, err = execute(t, dir, "personas")
	assert.Error(t, err, "out-of-range threshold from the environment")
}
