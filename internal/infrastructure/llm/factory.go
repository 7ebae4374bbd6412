package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"IncidentScanner/internal/config"
	"IncidentScanner/internal/ports"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderChutes     = "chutes"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOllama     = "ollama"
)

// NewChatClient selects a provider strategy by name. An empty name or "fallback"
// returns a nil client, meaning the deterministic extractor handles every article.
func NewChatClient(ctx context.Context, provider string, providers config.ProvidersConfig, timeout time.Duration) (ports.ChatClient, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	switch name := strings.ToLower(strings.TrimSpace(provider)); name {
	case "", "none", "fallback":
		return nil, nil

	case ProviderOpenRouter:
		if providers.OpenRouter.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingCredentials)
		}
		headers := map[string]string{
			"HTTP-Referer": "https://github.com/incident-scanner",
			"X-Title":      "Incident Scanner",
		}
		return NewOpenAIClient(name, providers.OpenRouter, timeout, headers), nil

	case ProviderChutes:
		if providers.Chutes.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingCredentials)
		}
		return NewOpenAIClient(name, providers.Chutes, timeout, nil), nil

	case ProviderOpenAI:
		if providers.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingCredentials)
		}
		return NewOpenAIClient(name, providers.OpenAI, timeout, nil), nil

	case ProviderAnthropic, "claude":
		if providers.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingCredentials)
		}
		return NewClaudeClient(providers.Anthropic, timeout), nil

	case ProviderGemini:
		if providers.Gemini.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingCredentials)
		}
		client, err := NewGeminiClient(ctx, providers.Gemini)
		if err != nil {
			return nil, err
		}
		return client, nil

	case ProviderOllama:
		if providers.Ollama.BaseURL == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingCredentials)
		}
		return NewOllamaClient(providers.Ollama, timeout), nil

	default:
		return nil, fmt.Errorf("unsupported classification provider: %s", name)
	}
}
