// Package ai provides the executors for the language model nodes.
package ai

import (
	"context"
	"fmt"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/protocol"
	providers "github.com/dukex/nodeflow/pkg/providers/ai"
	"github.com/dukex/nodeflow/pkg/template"
)

// ProviderSource hands out a Provider per vendor. *providers.Set satisfies it.
type ProviderSource interface {
	Provider(kind providers.Kind) (providers.Provider, error)
}

// Executor runs one of the AI node types against its vendor.
type Executor struct {
	nodeType    models.NodeType
	kind        providers.Kind
	credential  models.CredentialType
	providers   ProviderSource
	credentials protocol.CredentialStore
}

// NewExecutor returns the executor for an AI node type.
func NewExecutor(nodeType models.NodeType, source ProviderSource, credentials protocol.CredentialStore) (*Executor, error) {
	kind, credentialType, ok := vendorFor(nodeType)
	if !ok {
		return nil, fmt.Errorf("%s is not an AI node type", nodeType)
	}

	return &Executor{
		nodeType:    nodeType,
		kind:        kind,
		credential:  credentialType,
		providers:   source,
		credentials: credentials,
	}, nil
}

// ResultKey is the key the generated text is stored under, e.g. "openaiResponse".
func (e *Executor) ResultKey() string {
	return string(e.kind) + "Response"
}

func (e *Executor) Execute(ctx context.Context, input protocol.Input) (template.Context, error) {
	data, ok := input.Data.(models.AIData)
	if !ok {
		return nil, protocol.NewWorkflowError(input.NodeID, fmt.Sprintf("unexpected node data %T", input.Data), nil)
	}

	if err := models.ValidateNodeData(data); err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, fmt.Sprintf("invalid %s configuration", e.nodeType), err)
	}

	if e.credentials == nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "no credential store configured", nil)
	}

	credential, err := e.credentials.Credential(ctx, data.CredentialID, input.UserID)
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "credential not found", err)
	}

	if credential.Type != "" && credential.Type != e.credential {
		return nil, protocol.NewWorkflowError(input.NodeID,
			fmt.Sprintf("credential %s is a %s credential, expected %s", credential.ID, credential.Type, e.credential), nil)
	}

	provider, err := e.providers.Provider(e.kind)
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "provider unavailable", err)
	}

	resolver := input.Resolver()

	systemPrompt, err := resolver.Resolve(data.SystemPrompt, input.Context)
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "failed to resolve system prompt", err)
	}

	userPrompt, err := resolver.Resolve(data.UserPrompt, input.Context)
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "failed to resolve user prompt", err)
	}

	var text string

	err = input.Runner().Run(ctx, string(e.kind)+"-generate-text", func(ctx context.Context) error {
		generated, genErr := provider.Generate(ctx, providers.Request{
			Model:        data.Model,
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
			APIKey:       credential.Value,
		})
		text = generated

		return genErr
	})
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, fmt.Sprintf("%s request failed", e.kind), err)
	}

	return input.Context.Merge(data.VariableName, map[string]any{e.ResultKey(): text}), nil
}

func vendorFor(nodeType models.NodeType) (providers.Kind, models.CredentialType, bool) {
	switch nodeType {
	case models.NodeTypeOpenAI:
		return providers.KindOpenAI, models.CredentialTypeOpenAI, true
	case models.NodeTypeAnthropic:
		return providers.KindAnthropic, models.CredentialTypeAnthropic, true
	case models.NodeTypeGemini:
		return providers.KindGemini, models.CredentialTypeGemini, true
	case models.NodeTypeGrok:
		return providers.KindGrok, models.CredentialTypeGrok, true
	case models.NodeTypeDeepSeek:
		return providers.KindDeepSeek, models.CredentialTypeDeepSeek, true
	default:
		return "", "", false
	}
}

// Schema returns the JSON schema shared by the AI node types.
func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"variableName": map[string]any{"type": "string", "minLength": 1},
			"model":        map[string]any{"type": "string", "minLength": 1},
			"credentialId": map[string]any{"type": "string", "minLength": 1},
			"systemPrompt": map[string]any{
				"type":        "string",
				"description": "Defaults to \"" + providers.DefaultSystemPrompt + "\"",
			},
			"userPrompt": map[string]any{
				"type":        "string",
				"description": "Prompt sent to the model. Supports templating, e.g. Summarize {{json googleForm.responses}}",
			},
		},
		"required": []string{"variableName", "model", "credentialId"},
	}
}
