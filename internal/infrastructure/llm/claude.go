package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"IncidentScanner/internal/config"
	"IncidentScanner/internal/ports"
)

// ClaudeClient implements ports.ChatClient on the Anthropic Messages API.
type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

var _ ports.ChatClient = (*ClaudeClient)(nil)

// NewClaudeClient builds a client; BaseURL is optional.
func NewClaudeClient(cfg config.ProviderConfig, timeout time.Duration) *ClaudeClient {
	opts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	return &ClaudeClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
	}
}

// Complete sends the system prompt and a single user turn.
func (c *ClaudeClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(c.model),
		System: system,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(user),
				},
			},
		},
		MaxTokens: defaultMaxTokens,
	})
	if err != nil {
		return "", wrapClaudeError(err)
	}

	var sb strings.Builder
	for _, part := range resp.Content {
		if part.Text != nil {
			sb.WriteString(*part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", &ProviderError{Provider: "anthropic", Err: ErrEmptyResponse}
	}
	return sb.String(), nil
}

func wrapClaudeError(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider:   "anthropic",
			StatusCode: claudeStatus(string(apiErr.Type)),
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: "anthropic", StatusCode: reqErr.StatusCode, Err: err}
	}
	return &ProviderError{Provider: "anthropic", Err: err}
}

// claudeStatus maps Anthropic error types onto the HTTP statuses they are served with.
func claudeStatus(errType string) int {
	switch errType {
	case "invalid_request_error":
		return http.StatusBadRequest
	case "authentication_error":
		return http.StatusUnauthorized
	case "permission_error":
		return http.StatusForbidden
	case "not_found_error":
		return http.StatusNotFound
	case "rate_limit_error":
		return http.StatusTooManyRequests
	case "overloaded_error":
		return statusOverloaded
	default:
		return http.StatusInternalServerError
	}
}
