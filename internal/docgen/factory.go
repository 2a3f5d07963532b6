package docgen

import (
	"fmt"
	"os"
	"strings"
)

// Config holds generator configuration
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	CacheSize int
}

// NewFromEnv creates a generator based on environment variables.
// Priority:
// 1. REPODOC_PROVIDER (anthropic, openai, mock)
// 2. Check for API keys: ANTHROPIC_API_KEY, OPENAI_API_KEY
// 3. Default to the mock provider when nothing is configured
func NewFromEnv() (Generator, error) {
	provider := os.Getenv(EnvProvider)
	model := os.Getenv(EnvModel)
	anthropicKey := os.Getenv(EnvAnthropicAPIKey)
	openaiKey := os.Getenv(EnvOpenAIAPIKey)

	cache := NewCache(1000)

	if provider != "" {
		provider = strings.ToLower(provider)
		switch provider {
		case ProviderAnthropic:
			return NewAnthropicProvider(anthropicKey, model, cache)
		case ProviderOpenAI:
			return NewOpenAIProvider(openaiKey, model, cache)
		case ProviderMock:
			return NewMockProvider(), nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
		}
	}

	// Auto-detect based on available API keys
	if anthropicKey != "" {
		return NewAnthropicProvider(anthropicKey, model, cache)
	}
	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey, model, cache)
	}

	return NewMockProvider(), nil
}

// New creates a generator with explicit configuration
func New(cfg Config) (Generator, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderMock, "":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on the
// current environment
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvAnthropicAPIKey) != "" {
		return ProviderAnthropic
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	return ProviderMock
}
