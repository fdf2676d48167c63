package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukex/nodeflow/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leadIntake = `{
	"id": "wf-lead",
	"name": "Lead intake",
	"user_id": "user-1",
	"nodes": [
		{"id": "trigger", "type": "MANUAL_TRIGGER", "data": {}},
		{"id": "second", "type": "INITIAL", "data": {}}
	],
	"connections": [
		{"id": "c1", "from_node_id": "trigger", "to_node_id": "second"}
	]
}`

func writeDocument(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "workflow.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(t.Context(), append([]string{"nodeflow", "--log-level", "error"}, args...))

	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := runApp(t, "validate", writeDocument(t, leadIntake))
	require.NoError(t, err)
	assert.Equal(t, "workflow wf-lead is valid: 2 nodes, 1 connections\n", out)
}

func TestValidateCommand_RejectsCycle(t *testing.T) {
	doc := strings.Replace(leadIntake,
		`{"id": "c1", "from_node_id": "trigger", "to_node_id": "second"}`,
		`{"id": "c1", "from_node_id": "trigger", "to_node_id": "second"},
		{"id": "c2", "from_node_id": "second", "to_node_id": "trigger"}`, 1)

	_, err := runApp(t, "validate", writeDocument(t, doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestValidateCommand_MissingPath(t *testing.T) {
	_, err := runApp(t, "validate")
	assert.ErrorIs(t, err, errMissingArgument)
}

func TestImportThenRun(t *testing.T) {
	dataDir := t.TempDir()

	out, err := runApp(t, "--database-url", dataDir, "import", writeDocument(t, leadIntake))
	require.NoError(t, err)
	assert.Equal(t, "wf-lead\n", out)

	stored, err := file.NewPersistence(dataDir).WorkflowRepository().GetByID(t.Context(), "wf-lead")
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 2)

	out, err = runApp(t, "--database-url", dataDir, "run", "--data", `{"lead":"Ada"}`, "--trigger-event-id", "evt-1", "wf-lead")
	require.NoError(t, err)

	var final map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &final))
	assert.Equal(t, "Ada", final["lead"])

	record, err := file.NewPersistence(dataDir).ExecutionRepository().GetByTriggerEvent(t.Context(), "evt-1", "wf-lead")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", string(record.Status))
}

func TestRunCommand_UnknownWorkflow(t *testing.T) {
	_, err := runApp(t, "--database-url", t.TempDir(), "run", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow not found")
}

func TestRunCommand_InvalidData(t *testing.T) {
	_, err := runApp(t, "--database-url", t.TempDir(), "run", "--data", "{", "wf")
	assert.ErrorContains(t, err, "invalid --data")
}
