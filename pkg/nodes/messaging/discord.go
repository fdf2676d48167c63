package messaging

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/protocol"
	"github.com/dukex/nodeflow/pkg/template"
)

const DiscordResultKey = "discordResponse"

// Discord posts a message to a Discord webhook.
type Discord struct {
	client *http.Client
}

func NewDiscord(client *http.Client) *Discord {
	if client == nil {
		client = http.DefaultClient
	}

	return &Discord{client: client}
}

type discordPayload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

func (d *Discord) Execute(ctx context.Context, input protocol.Input) (template.Context, error) {
	data, ok := input.Data.(models.DiscordData)
	if !ok {
		return nil, protocol.NewWorkflowError(input.NodeID, fmt.Sprintf("unexpected node data %T", input.Data), nil)
	}

	if err := models.ValidateNodeData(data); err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "invalid Discord configuration", err)
	}

	content, err := renderContent(input, data.Content)
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "failed to resolve content", err)
	}

	payload := discordPayload{
		Content:  truncate(content, DiscordMaxContent),
		Username: data.Username,
	}

	err = input.Runner().Run(ctx, "discord-send-message", func(ctx context.Context) error {
		return postJSON(ctx, d.client, data.WebhookURL, payload)
	})
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "failed to send Discord message", err)
	}

	return input.Context.Merge(data.VariableName, sentResult(DiscordResultKey, discordSentFlag)), nil
}

// DiscordSchema returns the JSON schema for DISCORD node data.
func DiscordSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"variableName": map[string]any{"type": "string", "minLength": 1},
			"webhookUrl":   map[string]any{"type": "string", "format": "uri"},
			"content": map[string]any{
				"type":        "string",
				"description": "Message text, truncated to 2000 characters. Supports templating",
			},
			"username": map[string]any{"type": "string"},
		},
		"required": []string{"variableName", "webhookUrl"},
	}
}
