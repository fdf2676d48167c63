// Package ai provides clients for the language model vendors the AI nodes
// talk to. Every vendor is exposed through the same Provider capability.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind names a model vendor.
type Kind string

const (
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindGemini    Kind = "gemini"
	KindGrok      Kind = "grok"
	KindDeepSeek  Kind = "deepseek"
)

// DefaultSystemPrompt is used when a node leaves the system prompt empty.
const DefaultSystemPrompt = "You are a helpful assistant."

const maxErrorBody = 4 << 10

// Request is a single-turn text generation call.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	APIKey       string
}

// Provider generates text from a prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrEmptyResponse is returned when the vendor answered without any text.
var ErrEmptyResponse = errors.New("provider returned no text")

// StatusError reports a non-2xx answer from a vendor API.
type StatusError struct {
	Kind       Kind
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Kind, e.StatusCode, e.Body)
}

// Temporary reports whether the failure is on the vendor side.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

func postJSON(ctx context.Context, client *http.Client, kind Kind, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", kind, err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", kind, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return &StatusError{Kind: kind, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", kind, err)
	}

	return nil
}

func systemPrompt(req Request) string {
	if req.SystemPrompt == "" {
		return DefaultSystemPrompt
	}

	return req.SystemPrompt
}
