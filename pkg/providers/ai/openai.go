package ai

import (
	"context"
	"net/http"
	"strings"
)

const (
	OpenAIBaseURL   = "https://api.openai.com/v1"
	GrokBaseURL     = "https://api.x.ai/v1"
	DeepSeekBaseURL = "https://api.deepseek.com/v1"
)

// ChatCompletions talks to any vendor exposing the OpenAI chat completions API.
// OpenAI, Grok and DeepSeek all do.
type ChatCompletions struct {
	kind    Kind
	baseURL string
	client  *http.Client
}

// NewChatCompletions creates a chat completions client for kind rooted at baseURL.
func NewChatCompletions(kind Kind, baseURL string, client *http.Client) *ChatCompletions {
	return &ChatCompletions{kind: kind, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *ChatCompletions) Generate(ctx context.Context, req Request) (string, error) {
	payload := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req)},
			{Role: "user", Content: req.UserPrompt},
		},
	}

	var resp chatResponse

	err := postJSON(ctx, c.client, c.kind, c.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + req.APIKey}, payload, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
