package registry

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/dukex/nodeflow/pkg/mocks"
	"github.com/dukex/nodeflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(Dependencies{
		Logger:      slog.Default(),
		HTTPClient:  http.DefaultClient,
		Providers:   &mocks.MockProviderSource{},
		Credentials: &mocks.MockCredentialStore{},
	})
}

func TestLookup_EveryNodeTypeResolves(t *testing.T) {
	registry := newTestRegistry()

	for _, nodeType := range models.AllNodeTypes() {
		executor, err := registry.Lookup(nodeType)
		require.NoError(t, err, "node type %s", nodeType)
		assert.NotNil(t, executor, "node type %s", nodeType)
	}
}

func TestLookup_UnknownType(t *testing.T) {
	executor, err := newTestRegistry().Lookup(models.NodeType("TELEPORT"))
	assert.Nil(t, executor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNodeType))

	var unknown *UnknownNodeTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, models.NodeType("TELEPORT"), unknown.Type)
}

func TestLookup_TriggersShareExecutor(t *testing.T) {
	registry := newTestRegistry()

	manual, err := registry.Lookup(models.NodeTypeManualTrigger)
	require.NoError(t, err)

	stripe, err := registry.Lookup(models.NodeTypeStripeTrigger)
	require.NoError(t, err)

	assert.Same(t, manual, stripe)
}

func TestCatalogue(t *testing.T) {
	catalogue := Catalogue()
	require.Len(t, catalogue, len(models.AllNodeTypes()))

	for i, info := range catalogue {
		assert.Equal(t, models.AllNodeTypes()[i], info.Type)
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.Description)
		assert.NotNil(t, info.Schema, "schema for %s", info.Type)

		if info.Type.IsTrigger() {
			assert.Equal(t, CategoryTrigger, info.Category)
		} else {
			assert.Equal(t, CategoryAction, info.Category)
		}
	}
}

func TestValidateNodeData(t *testing.T) {
	tests := []struct {
		name     string
		nodeType models.NodeType
		data     map[string]any
		wantErr  string
	}{
		{
			name:     "valid http request",
			nodeType: models.NodeTypeHTTPRequest,
			data:     map[string]any{"variableName": "todo", "endpoint": "https://example.com", "method": "GET"},
		},
		{
			name:     "http request missing endpoint",
			nodeType: models.NodeTypeHTTPRequest,
			data:     map[string]any{"variableName": "todo"},
			wantErr:  "endpoint",
		},
		{
			name:     "http request bad method",
			nodeType: models.NodeTypeHTTPRequest,
			data:     map[string]any{"variableName": "todo", "endpoint": "https://example.com", "method": "TRACE"},
			wantErr:  "method",
		},
		{
			name:     "ai node requires credential",
			nodeType: models.NodeTypeOpenAI,
			data:     map[string]any{"variableName": "v", "model": "gpt-4o"},
			wantErr:  "credentialId",
		},
		{
			name:     "trigger accepts empty data",
			nodeType: models.NodeTypeManualTrigger,
			data:     nil,
		},
		{
			name:     "unknown type",
			nodeType: models.NodeType("TELEPORT"),
			data:     map[string]any{},
			wantErr:  "unknown node type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeData(tt.nodeType, tt.data)
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateWorkflowDocument(t *testing.T) {
	doc := []byte(`{
		"id": "wf-1",
		"name": "Lead intake",
		"user_id": "user-1",
		"nodes": [
			{"id": "trigger", "type": "MANUAL_TRIGGER", "data": {}},
			{"id": "fetch", "type": "HTTP_REQUEST", "data": {"variableName": "todo", "endpoint": "https://example.com/todos/1"}}
		],
		"connections": [
			{"id": "c1", "from_node_id": "trigger", "to_node_id": "fetch"}
		]
	}`)

	workflow, err := ValidateWorkflowDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "wf-1", workflow.ID)
	require.Len(t, workflow.Nodes, 2)
	assert.IsType(t, models.HTTPRequestData{}, workflow.Nodes[1].Data)
}

func TestValidateWorkflowDocument_CollectsProblems(t *testing.T) {
	doc := []byte(`{
		"id": "wf-1",
		"nodes": [
			{"id": "a", "type": "HTTP_REQUEST", "data": {"variableName": "a"}},
			{"id": "b", "type": "SLACK", "data": {"variableName": "b", "webhookUrl": "https://hooks.slack.com/x"}}
		],
		"connections": [
			{"id": "c1", "from_node_id": "a", "to_node_id": "b"},
			{"id": "c2", "from_node_id": "b", "to_node_id": "a"}
		]
	}`)

	_, err := ValidateWorkflowDocument(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node a")
	assert.Contains(t, err.Error(), "cycle")
}

func TestValidateWorkflowDocument_Malformed(t *testing.T) {
	_, err := ValidateWorkflowDocument([]byte(`{"nodes": [`))
	require.Error(t, err)
}
