// Package messaging provides the executors that post to chat webhooks.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/dukex/nodeflow/pkg/protocol"
)

// DiscordMaxContent is the longest message Discord accepts, in characters.
const DiscordMaxContent = 2000

// WebhookError represents a non-2xx answer from a chat webhook.
type WebhookError struct {
	StatusCode int
	Message    string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Message)
}

// Flags set under data. Workflows template against these exact spellings.
const (
	discordSentFlag = "messageSended"
	slackSentFlag   = "messageSent"
)

func sentResult(key, flag string) map[string]any {
	return map[string]any{
		key: map[string]any{
			"data": map[string]any{flag: true},
		},
	}
}

// renderContent resolves a message template and undoes the HTML escaping
// applied to interpolated values, since chat platforms render plain text.
func renderContent(input protocol.Input, source string) (string, error) {
	rendered, err := input.Resolver().Resolve(source, input.Context)
	if err != nil {
		return "", err
	}

	return html.UnescapeString(rendered), nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

		return &WebhookError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
