package model

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 8192

// AnthropicProvider speaks the Anthropic messages API. The API has no
// JSON response mode; strict-JSON output is carried by the prompt, and
// the client's structural validation rejects anything else.
type AnthropicProvider struct {
	client anthropic.Client
}

func NewAnthropicProvider(apiKey string, opts ...Option) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, Errorf(KindClient, "anthropic API key is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	clientOptions := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		clientOptions = append(clientOptions, option.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		clientOptions = append(clientOptions, option.WithHTTPClient(o.httpClient))
	}

	return &AnthropicProvider{client: anthropic.NewClient(clientOptions...)}, nil
}

func (p *AnthropicProvider) Name() string { return string(ProviderAnthropic) }

func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Anthropic takes the system prompt outside the message list.
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   anthropicMaxTokens,
		System:      system,
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return nil, p.parseError(err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return nil, Errorf(KindParse, "completion response contains no text content")
	}

	return &Response{
		Content: content.String(),
		Usage: Usage{
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
		},
	}, nil
}

func (p *AnthropicProvider) parseError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return Wrap(KindNetwork, err, "anthropic request failed")
	}

	kind := KindClient
	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		kind = KindRateLimit
	case apiErr.StatusCode >= 500:
		kind = KindServer
	}

	tagged := Wrap(kind, err, "anthropic request failed with status %d", apiErr.StatusCode)
	tagged.StatusCode = apiErr.StatusCode
	tagged.RetryAfter = retryAfterHeader(apiErr.Response)
	if apiErr.StatusCode == 529 && tagged.RetryAfter == 0 {
		// Overloaded responses carry no Retry-After header.
		tagged.RetryAfter = 10 * time.Second
	}
	return tagged
}
