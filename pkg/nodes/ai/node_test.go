package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dukex/nodeflow/pkg/mocks"
	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/nodes/ai"
	"github.com/dukex/nodeflow/pkg/protocol"
	providers "github.com/dukex/nodeflow/pkg/providers/ai"
	"github.com/dukex/nodeflow/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func aiInput(data models.NodeData, ctx template.Context) protocol.Input {
	return protocol.Input{
		NodeID:    "ai-1",
		Data:      data,
		Context:   ctx,
		UserID:    "user-1",
		Templates: template.NewResolver(),
	}
}

func TestNewExecutor_RejectsNonAITypes(t *testing.T) {
	_, err := ai.NewExecutor(models.NodeTypeSlack, &mocks.MockProviderSource{}, &mocks.MockCredentialStore{})
	require.Error(t, err)
}

func TestExecutor_ResultKeys(t *testing.T) {
	expected := map[models.NodeType]string{
		models.NodeTypeOpenAI:    "openaiResponse",
		models.NodeTypeAnthropic: "anthropicResponse",
		models.NodeTypeGemini:    "geminiResponse",
		models.NodeTypeGrok:      "grokResponse",
		models.NodeTypeDeepSeek:  "deepseekResponse",
	}

	for nodeType, key := range expected {
		executor, err := ai.NewExecutor(nodeType, &mocks.MockProviderSource{}, &mocks.MockCredentialStore{})
		require.NoError(t, err)
		assert.Equal(t, key, executor.ResultKey())
	}
}

func TestExecutor_GeneratesText(t *testing.T) {
	credentials := &mocks.MockCredentialStore{}
	credentials.On("Credential", mock.Anything, "cred-1", "user-1").
		Return(&models.Credential{ID: "cred-1", UserID: "user-1", Type: models.CredentialTypeOpenAI, Value: "sk-secret"}, nil)

	provider := &mocks.MockProvider{}
	provider.On("Generate", mock.Anything, providers.Request{
		Model:        "gpt-4o-mini",
		SystemPrompt: "",
		UserPrompt:   "Summarize: Ada wants a demo",
		APIKey:       "sk-secret",
	}).Return("Ada requested a demo.", nil)

	source := &mocks.MockProviderSource{}
	source.On("Provider", providers.KindOpenAI).Return(provider, nil)

	executor, err := ai.NewExecutor(models.NodeTypeOpenAI, source, credentials)
	require.NoError(t, err)

	out, err := executor.Execute(context.Background(), aiInput(
		models.AIData{
			VariableName: "summary",
			Model:        "gpt-4o-mini",
			CredentialID: "cred-1",
			UserPrompt:   "Summarize: {{form.message}}",
		},
		template.Context{"form": map[string]any{"message": "Ada wants a demo"}},
	))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"openaiResponse": "Ada requested a demo."}, out["summary"])
	assert.Contains(t, out, "form")

	credentials.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestExecutor_MissingCredential(t *testing.T) {
	credentials := &mocks.MockCredentialStore{}
	credentials.On("Credential", mock.Anything, "cred-1", "user-1").Return(nil, errors.New("not found"))

	source := &mocks.MockProviderSource{}

	executor, err := ai.NewExecutor(models.NodeTypeGrok, source, credentials)
	require.NoError(t, err)

	_, err = executor.Execute(context.Background(), aiInput(
		models.AIData{VariableName: "v", Model: "grok-2", CredentialID: "cred-1"},
		template.Context{},
	))
	require.ErrorIs(t, err, protocol.ErrWorkflow)
	assert.Contains(t, err.Error(), "credential not found")
	source.AssertNotCalled(t, "Provider", mock.Anything)
}

func TestExecutor_CredentialTypeMismatch(t *testing.T) {
	credentials := &mocks.MockCredentialStore{}
	credentials.On("Credential", mock.Anything, "cred-1", "user-1").
		Return(&models.Credential{ID: "cred-1", Type: models.CredentialTypeGemini, Value: "x"}, nil)

	executor, err := ai.NewExecutor(models.NodeTypeAnthropic, &mocks.MockProviderSource{}, credentials)
	require.NoError(t, err)

	_, err = executor.Execute(context.Background(), aiInput(
		models.AIData{VariableName: "v", Model: "claude", CredentialID: "cred-1"},
		template.Context{},
	))
	require.ErrorIs(t, err, protocol.ErrWorkflow)
	assert.Contains(t, err.Error(), "expected ANTHROPIC")
}

func TestExecutor_ValidationBeforeCredentialLookup(t *testing.T) {
	credentials := &mocks.MockCredentialStore{}

	executor, err := ai.NewExecutor(models.NodeTypeGemini, &mocks.MockProviderSource{}, credentials)
	require.NoError(t, err)

	_, err = executor.Execute(context.Background(), aiInput(models.AIData{VariableName: "v"}, template.Context{}))
	require.ErrorIs(t, err, protocol.ErrWorkflow)
	assert.Contains(t, err.Error(), "model is required")
	assert.Contains(t, err.Error(), "credentialId is required")
	credentials.AssertNotCalled(t, "Credential", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_ProviderFailure(t *testing.T) {
	credentials := &mocks.MockCredentialStore{}
	credentials.On("Credential", mock.Anything, "cred-1", "user-1").
		Return(&models.Credential{ID: "cred-1", Type: models.CredentialTypeDeepSeek, Value: "x"}, nil)

	provider := &mocks.MockProvider{}
	provider.On("Generate", mock.Anything, mock.Anything).Return("", providers.ErrCircuitOpen)

	source := &mocks.MockProviderSource{}
	source.On("Provider", providers.KindDeepSeek).Return(provider, nil)

	executor, err := ai.NewExecutor(models.NodeTypeDeepSeek, source, credentials)
	require.NoError(t, err)

	_, err = executor.Execute(context.Background(), aiInput(
		models.AIData{VariableName: "v", Model: "deepseek-chat", CredentialID: "cred-1"},
		template.Context{},
	))
	require.ErrorIs(t, err, protocol.ErrWorkflow)
	assert.ErrorIs(t, err, providers.ErrCircuitOpen)
}
