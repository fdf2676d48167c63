// Package httprequest provides the HTTP_REQUEST node executor.
package httprequest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/protocol"
	"github.com/dukex/nodeflow/pkg/template"
)

const ResultKey = "httpRequestResponse"

// HTTPError represents a non-2xx answer.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Executor performs one HTTP call per invocation and stores the response
// under the node's variable name.
type Executor struct {
	client *http.Client
}

// NewExecutor creates an HTTP request executor. A nil client means http.DefaultClient.
func NewExecutor(client *http.Client) *Executor {
	if client == nil {
		client = http.DefaultClient
	}

	return &Executor{client: client}
}

func (e *Executor) Execute(ctx context.Context, input protocol.Input) (template.Context, error) {
	data, ok := input.Data.(models.HTTPRequestData)
	if !ok {
		return nil, protocol.NewWorkflowError(input.NodeID, fmt.Sprintf("unexpected node data %T", input.Data), nil)
	}

	data.Method = strings.ToUpper(data.Method)

	if err := models.ValidateNodeData(data); err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "invalid HTTP request configuration", err)
	}

	method := data.Method
	if method == "" {
		method = http.MethodGet
	}

	resolver := input.Resolver()

	endpoint, err := resolver.Resolve(data.Endpoint, input.Context)
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "failed to resolve endpoint", err)
	}

	if strings.TrimSpace(endpoint) == "" {
		return nil, protocol.NewWorkflowError(input.NodeID, "endpoint resolved to an empty string", nil)
	}

	var body []byte

	if hasBody(method) && strings.TrimSpace(data.Body) != "" {
		resolved, err := resolver.Resolve(data.Body, input.Context)
		if err != nil {
			return nil, protocol.NewWorkflowError(input.NodeID, "failed to resolve body", err)
		}

		if !json.Valid([]byte(resolved)) {
			return nil, protocol.NewWorkflowError(input.NodeID, "request body is not valid JSON", nil)
		}

		body = []byte(resolved)
	}

	var response map[string]any

	err = input.Runner().Run(ctx, "http-request", func(ctx context.Context) error {
		result, doErr := e.do(ctx, method, endpoint, body)
		response = result

		return doErr
	})
	if err != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, "HTTP request failed", err)
	}

	return input.Context.Merge(data.VariableName, map[string]any{ResultKey: response}), nil
}

func (e *Executor) do(ctx context.Context, method, endpoint string, body []byte) (map[string]any, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	return map[string]any{
		"status":     resp.StatusCode,
		"statusText": http.StatusText(resp.StatusCode),
		"data":       decodeBody(resp.Header.Get("Content-Type"), raw),
	}, nil
}

func decodeBody(contentType string, raw []byte) any {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			return decoded
		}
	}

	return string(raw)
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}
