package ai

import (
	"context"
	"net/http"
	"strings"
)

const (
	AnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	anthropicTokens  = 1024
)

// Anthropic calls the Messages API.
type Anthropic struct {
	baseURL string
	client  *http.Client
}

func NewAnthropic(baseURL string, client *http.Client) *Anthropic {
	return &Anthropic{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	payload := anthropicRequest{
		Model:     req.Model,
		MaxTokens: anthropicTokens,
		System:    systemPrompt(req),
		Messages:  []chatMessage{{Role: "user", Content: req.UserPrompt}},
	}

	headers := map[string]string{
		"x-api-key":         req.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var resp anthropicResponse
	if err := postJSON(ctx, a.client, KindAnthropic, a.baseURL+"/v1/messages", headers, payload, &resp); err != nil {
		return "", err
	}

	var text strings.Builder

	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}

	return text.String(), nil
}
