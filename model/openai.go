package model

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider speaks the OpenAI chat completions API, including any
// compatible endpoint selected via WithBaseURL.
type OpenAIProvider struct {
	client openai.Client
}

func NewOpenAIProvider(apiKey string, opts ...Option) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, Errorf(KindClient, "openai API key is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// The SDK retries on its own by default; the retry policy here is
	// owned by Client, so the SDK's is disabled.
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

	return &OpenAIProvider{client: openai.NewClient(clientOptions...)}, nil
}

func (p *OpenAIProvider) Name() string { return string(ProviderOpenAI) }

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.JSONOnly {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.parseError(err)
	}
	if len(completion.Choices) == 0 {
		return nil, Errorf(KindParse, "completion response contains no choices")
	}

	return &Response{
		Content: completion.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
		},
	}, nil
}

func (p *OpenAIProvider) parseError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return Wrap(KindNetwork, err, "openai request failed")
	}

	kind := KindClient
	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		kind = KindRateLimit
	case apiErr.StatusCode >= 500:
		kind = KindServer
	}

	tagged := Wrap(kind, err, "openai request failed with status %d", apiErr.StatusCode)
	tagged.StatusCode = apiErr.StatusCode
	tagged.RetryAfter = retryAfterHeader(apiErr.Response)
	return tagged
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
