package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrEmptyResponse is returned when a provider answers without any content.
	ErrEmptyResponse = errors.New("empty response from provider")
	// ErrMissingCredentials is returned by the factory when the selected provider has no key.
	ErrMissingCredentials = errors.New("provider credentials are not configured")
)

// statusOverloaded is Anthropic's non-standard "overloaded" status.
const statusOverloaded = 529

// ProviderError carries the HTTP status reported by a classification provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports rate-limit, quota, timeout and empty-response failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		switch pe.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusPaymentRequired,
			http.StatusRequestTimeout,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
			statusOverloaded:
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "rate_limit", "too many requests", "quota", "resource_exhausted", "timeout"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsPermanent reports credential and request-shape failures that no retry or fallback can fix
// for the provider, such as 400, 401, 403, 404 and 422.
func IsPermanent(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.StatusCode {
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusUnprocessableEntity:
		return !IsRetryable(err)
	}
	return false
}
