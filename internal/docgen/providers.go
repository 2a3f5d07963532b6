package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Provider configuration
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"

	// Default models
	DefaultAnthropicModel = "claude-3-5-sonnet-latest"
	DefaultOpenAIModel    = "gpt-4o-mini"

	// MaxResponseTokens bounds a single documentation response
	MaxResponseTokens = 4000

	// Environment variables
	EnvProvider        = "REPODOC_PROVIDER"
	EnvModel           = "REPODOC_MODEL"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
)

// AnthropicProvider implements Generator using the Anthropic messages API
type AnthropicProvider struct {
	apiKey     string
	model      string
	httpClient *http.Client
	cache      *Cache
}

// NewAnthropicProvider creates a new Anthropic-backed generator
func NewAnthropicProvider(apiKey, model string, cache *Cache) (*AnthropicProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAnthropicAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvAnthropicAPIKey)
	}
	if model == "" {
		model = DefaultAnthropicModel
	}

	return &AnthropicProvider{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		cache: cache,
	}, nil
}

func (a *AnthropicProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := ValidateRequest(req); err != nil {
		return "", err
	}

	hash := ComputeHash(req)
	if a.cache != nil {
		if resp, ok := a.cache.Get(hash); ok {
			return resp, nil
		}
	}

	config := DefaultRetryConfig()
	text, err := retryWithBackoff(ctx, config, func() (string, error) {
		return a.callAPI(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, MaxRetries, err)
	}

	if a.cache != nil {
		a.cache.Set(hash, text)
	}
	return text, nil
}

func (a *AnthropicProvider) callAPI(ctx context.Context, req Request) (string, error) {
	reqBody := map[string]interface{}{
		"model":      a.model,
		"max_tokens": MaxResponseTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": composePrompt(req)},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response content")
	}
	return apiResp.Content[0].Text, nil
}

func (a *AnthropicProvider) Provider() string {
	return ProviderAnthropic
}

func (a *AnthropicProvider) Model() string {
	return a.model
}

func (a *AnthropicProvider) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}

// OpenAIProvider implements Generator using the OpenAI chat completions API
type OpenAIProvider struct {
	apiKey     string
	model      string
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates a new OpenAI-backed generator
func NewOpenAIProvider(apiKey, model string, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIProvider{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		cache: cache,
	}, nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := ValidateRequest(req); err != nil {
		return "", err
	}

	hash := ComputeHash(req)
	if o.cache != nil {
		if resp, ok := o.cache.Get(hash); ok {
			return resp, nil
		}
	}

	config := DefaultRetryConfig()
	text, err := retryWithBackoff(ctx, config, func() (string, error) {
		return o.callAPI(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, MaxRetries, err)
	}

	if o.cache != nil {
		o.cache.Set(hash, text)
	}
	return text, nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, req Request) (string, error) {
	reqBody := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]interface{}{
			{"role": "user", "content": composePrompt(req)},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response choices")
	}
	return apiResp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Model() string {
	return o.model
}

func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// composePrompt folds the carried context, when present, into the message
// sent to the provider
func composePrompt(req Request) string {
	if req.Context == "" {
		return req.Prompt
	}
	return fmt.Sprintf("Previously, I've analyzed other sections of this codebase and discovered:\n\n%s\n\n%s",
		req.Context, req.Prompt)
}
