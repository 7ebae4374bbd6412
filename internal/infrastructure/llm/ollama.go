package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"IncidentScanner/internal/config"
	"IncidentScanner/internal/ports"
)

// OllamaClient implements ports.ChatClient against a local Ollama /api/chat endpoint.
type OllamaClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

var _ ports.ChatClient = (*OllamaClient)(nil)

// NewOllamaClient builds a client from configuration.
func NewOllamaClient(cfg config.ProviderConfig, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/api/chat",
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error"`
}

// Complete posts a non-streaming chat request constrained to JSON output.
func (c *OllamaClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c == nil || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("ollama client misconfigured")
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []ollamaMessage{
			{Role: "system", Content: safePrompt(system)},
			{Role: "user", Content: user},
		},
		"stream":  false,
		"format":  "json",
		"options": map[string]any{"temperature": defaultTemperature},
	}

	var resp ollamaResponse
	if err := c.post(ctx, payload, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", &ProviderError{Provider: "ollama", Err: ErrEmptyResponse}
	}
	return resp.Message.Content, nil
}

func (c *OllamaClient) post(ctx context.Context, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal ollama payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Provider: "ollama", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ProviderError{
			Provider:   "ollama",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(raw)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &ProviderError{Provider: "ollama", Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You extract structured security incident records from news articles and answer in JSON."
	}
	return prompt
}
