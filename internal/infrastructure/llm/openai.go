package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"IncidentScanner/internal/config"
	"IncidentScanner/internal/ports"
)

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 800
)

// OpenAIClient talks to any OpenAI-compatible chat completion API (OpenAI, OpenRouter, Chutes).
type OpenAIClient struct {
	provider string
	client   *openai.Client
	model    string
}

var _ ports.ChatClient = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client; an empty BaseURL keeps the OpenAI default.
func NewOpenAIClient(provider string, cfg config.ProviderConfig, timeout time.Duration, headers map[string]string) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: headerTransport{headers: headers, next: http.DefaultTransport},
	}

	return &OpenAIClient{
		provider: provider,
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
	}
}

// Complete sends a system + user message pair and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", c.wrap(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &ProviderError{Provider: c.provider, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) wrap(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: c.provider, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: c.provider, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &ProviderError{Provider: c.provider, Err: err}
}

// headerTransport adds fixed headers, e.g. OpenRouter's attribution headers.
type headerTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range t.headers {
			req.Header.Set(k, v)
		}
	}
	return t.next.RoundTrip(req)
}
