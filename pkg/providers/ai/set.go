package ai

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker"
)

// Config selects endpoints and the breaker policy for a Set.
// Empty base URLs fall back to the public vendor endpoints.
type Config struct {
	HTTPClient *http.Client
	BaseURLs   map[Kind]string
	Breaker    BreakerConfig
	Logger     *slog.Logger
}

// Set holds one breaker-guarded Provider per vendor.
type Set struct {
	providers map[Kind]*guarded
}

// NewSet builds a Provider for every Kind.
func NewSet(cfg Config) *Set {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	breaker := cfg.Breaker
	if breaker == (BreakerConfig{}) {
		breaker = DefaultBreakerConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := func(kind Kind, fallback string) string {
		if url, ok := cfg.BaseURLs[kind]; ok && url != "" {
			return url
		}

		return fallback
	}

	onStateChange := func(name string, from, to gobreaker.State) {
		logger.Warn("AI provider circuit breaker changed state", "provider", name, "from", from.String(), "to", to.String())
	}

	raw := map[Kind]Provider{
		KindOpenAI:    NewChatCompletions(KindOpenAI, baseURL(KindOpenAI, OpenAIBaseURL), client),
		KindGrok:      NewChatCompletions(KindGrok, baseURL(KindGrok, GrokBaseURL), client),
		KindDeepSeek:  NewChatCompletions(KindDeepSeek, baseURL(KindDeepSeek, DeepSeekBaseURL), client),
		KindAnthropic: NewAnthropic(baseURL(KindAnthropic, AnthropicBaseURL), client),
		KindGemini:    NewGemini(baseURL(KindGemini, GeminiBaseURL), client),
	}

	providers := make(map[Kind]*guarded, len(raw))
	for kind, provider := range raw {
		providers[kind] = withBreaker(kind, provider, breaker, onStateChange)
	}

	return &Set{providers: providers}
}

// Provider returns the guarded provider for kind.
func (s *Set) Provider(kind Kind) (Provider, error) {
	provider, ok := s.providers[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported AI provider %q", kind)
	}

	return provider, nil
}
