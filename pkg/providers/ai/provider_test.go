package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

	return body
}

func TestChatCompletions_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body := decodeBody(t, r)
		assert.Equal(t, "gpt-4o-mini", body["model"])

		messages, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		assert.Equal(t, map[string]any{"role": "system", "content": DefaultSystemPrompt}, messages[0])
		assert.Equal(t, map[string]any{"role": "user", "content": "Say hi"}, messages[1])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
	}))
	defer server.Close()

	client := NewChatCompletions(KindOpenAI, server.URL+"/", server.Client())

	text, err := client.Generate(context.Background(), Request{Model: "gpt-4o-mini", UserPrompt: "Say hi", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestChatCompletions_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	client := NewChatCompletions(KindGrok, server.URL, server.Client())

	_, err := client.Generate(context.Background(), Request{Model: "grok-2", UserPrompt: "x", APIKey: "nope"})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, KindGrok, statusErr.Kind)
	assert.False(t, statusErr.Temporary())
	assert.Contains(t, err.Error(), "bad key")
}

func TestChatCompletions_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := NewChatCompletions(KindDeepSeek, server.URL, server.Client()).
		Generate(context.Background(), Request{Model: "deepseek-chat"})
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropic_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body := decodeBody(t, r)
		assert.Equal(t, "Be brief.", body["system"])
		assert.InDelta(t, float64(anthropicTokens), body["max_tokens"], 0)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hello "},{"type":"tool_use"},{"type":"text","text":"there"}]}`))
	}))
	defer server.Close()

	text, err := NewAnthropic(server.URL, server.Client()).Generate(context.Background(), Request{
		Model:        "claude-3-5-haiku-latest",
		SystemPrompt: "Be brief.",
		UserPrompt:   "Greet me",
		APIKey:       "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)
}

func TestGemini_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		body := decodeBody(t, r)
		assert.Contains(t, body, "systemInstruction")
		assert.Contains(t, body, "contents")

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"4"}]}}]}`))
	}))
	defer server.Close()

	text, err := NewGemini(server.URL, server.Client()).Generate(context.Background(), Request{
		Model:      "gemini-1.5-flash",
		UserPrompt: "2+2?",
		APIKey:     "g-key",
	})
	require.NoError(t, err)
	assert.Equal(t, "4", text)
}

func TestSet_BreakerOpensOnVendorFailures(t *testing.T) {
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	set := NewSet(Config{
		HTTPClient: server.Client(),
		BaseURLs:   map[Kind]string{KindOpenAI: server.URL},
		Breaker: BreakerConfig{
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             time.Minute,
			ConsecutiveFailures: 2,
		},
	})

	provider, err := set.Provider(KindOpenAI)
	require.NoError(t, err)

	for range 2 {
		_, err = provider.Generate(context.Background(), Request{Model: "m"})

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
	}

	_, err = provider.Generate(context.Background(), Request{Model: "m"})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestSet_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	set := NewSet(Config{
		HTTPClient: server.Client(),
		BaseURLs:   map[Kind]string{KindAnthropic: server.URL},
		Breaker:    BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, ConsecutiveFailures: 1},
	})

	provider, err := set.Provider(KindAnthropic)
	require.NoError(t, err)

	for range 3 {
		_, err = provider.Generate(context.Background(), Request{Model: "m"})
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}

	assert.Equal(t, int32(3), hits.Load())
}

func TestSet_UnknownKind(t *testing.T) {
	_, err := NewSet(Config{}).Provider(Kind("llama"))
	require.Error(t, err)
}
