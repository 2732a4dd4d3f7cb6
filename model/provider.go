// Package model wraps the remote completion APIs: it converts the
// conversation to each provider's wire format, requests strict JSON
// output, parses and structurally validates the response, and applies
// the retry policy for transient failures.
package model

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Temperature is the fixed sampling temperature for every completion
// request. Moderate and non-zero so retries produce fresh candidates.
const Temperature = 0.7

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is one completion call. JSONOnly asks the provider for a
// strict-JSON payload where the API supports it.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	JSONOnly    bool
}

type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

type Response struct {
	Content string
	Usage   Usage
}

// Provider is the abstraction over completion APIs. Implementations
// must tag failures with *Error so the retry policy can classify them.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Name() string
}

type ProviderKind string

const (
	ProviderOpenAI    ProviderKind = "openai"
	ProviderAnthropic ProviderKind = "anthropic"
)

// Option configures a provider.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the provider at a custom API endpoint. Any
// OpenAI-compatible service (DeepSeek, OpenRouter, local gateways)
// can be reached this way.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// NewProvider constructs a provider by kind.
func NewProvider(kind ProviderKind, apiKey string, opts ...Option) (Provider, error) {
	switch kind {
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, opts...)
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q", kind)
	}
}

func validateRequest(req Request) error {
	if req.Model == "" {
		return Errorf(KindClient, "model is required")
	}
	if len(req.Messages) == 0 {
		return Errorf(KindClient, "at least one message is required")
	}
	return nil
}

func retryAfterHeader(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := time.ParseDuration(header + "s")
	if err != nil {
		return 0
	}
	return seconds
}
