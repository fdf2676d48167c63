package messaging

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/protocol"
	"github.com/dukex/nodeflow/pkg/template"
)

const SlackResultKey = "slackResponse"

// Slack posts a message to a Slack incoming webhook.
type Slack struct {
	client *http.Client
}

func NewSlack(client *http.Client) *Slack {
	if client == nil {
		client = http.DefaultClient
	}

	return &Slack{client: client}
}

func (s *Slack) Execute(ctx context.Context, input protocol.Input) (template.Context, error) {
	data, ok := input.Data.(models.SlackData)
	if !ok {
		return nil, protocol.NewWorkflowError(input.NodeID, fmt.Sprintf("unexpected node data %T", input.Data), nil)
	}

	if err := models.ValidateNodeData(data); err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "invalid Slack configuration", err)
	}

	content, err := renderContent(input, data.Content)
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "failed to resolve content", err)
	}

	err = input.Runner().Run(ctx, "slack-send-message", func(ctx context.Context) error {
		return postJSON(ctx, s.client, data.WebhookURL, map[string]string{"text": content})
	})
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "failed to send Slack message", err)
	}

	return input.Context.Merge(data.VariableName, sentResult(SlackResultKey, slackSentFlag)), nil
}

// SlackSchema returns the JSON schema for SLACK node data.
func SlackSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"variableName": map[string]any{"type": "string", "minLength": 1},
			"webhookUrl":   map[string]any{"type": "string", "format": "uri"},
			"content":      map[string]any{"type": "string", "description": "Message text. Supports templating"},
		},
		"required": []string{"variableName", "webhookUrl"},
	}
}
