package model

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/ticketsmith/ticketsmith/ticket"
)

// Client layers parsing, structural validation and the retry policy
// over a Provider. One Client serves one model on one provider; it is
// safe for sequential reuse across generate calls.
type Client struct {
	provider Provider
	model    string
	retry    RetryConfig
	hooks    []RetryHook
	logger   *slog.Logger
	metrics  *Metrics
}

type ClientOption func(*Client)

func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(c *Client) { c.retry = cfg }
}

func WithRetryHooks(hooks ...RetryHook) ClientOption {
	return func(c *Client) { c.hooks = append(c.hooks, hooks...) }
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

func NewClient(provider Provider, modelName string, opts ...ClientOption) *Client {
	c := &Client{
		provider: provider,
		model:    modelName,
		retry:    DefaultRetryConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends the conversation and returns the structurally
// validated ticket batch. Parse failures and shape violations are
// retried like any other transient fault; fatal provider errors and
// retry exhaustion surface as tagged *Error values.
func (c *Client) Complete(ctx context.Context, messages []Message) (*ticket.Batch, error) {
	var batch *ticket.Batch
	err := c.run(ctx, messages, func(payload []byte) error {
		parsed, parseErr := ticket.ParseBatch(payload)
		if parseErr != nil {
			var structErr *ticket.StructureError
			if errors.As(parseErr, &structErr) {
				return Wrap(KindValidation, parseErr, "completion failed structural validation")
			}
			return Wrap(KindParse, parseErr, "completion payload is not valid JSON")
		}
		batch = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Probe sends the conversation and returns the raw JSON payload without
// applying the ticket schema. Used by the connectivity self-test.
func (c *Client) Probe(ctx context.Context, messages []Message) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.run(ctx, messages, func(payload []byte) error {
		var decoded any
		if jsonErr := json.Unmarshal(payload, &decoded); jsonErr != nil {
			return Wrap(KindParse, jsonErr, "completion payload is not valid JSON")
		}
		raw = json.RawMessage(payload)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// run drives the bounded-retry loop around one logical completion.
// check validates the raw payload of each attempt and must return a
// tagged *Error on rejection.
func (c *Client) run(ctx context.Context, messages []Message, check func(payload []byte) error) error {
	runID := uuid.NewString()
	start := time.Now()
	var attempt uint

	operation := func() (struct{}, error) {
		attempt++
		err := c.attempt(ctx, runID, attempt, messages, check)
		if err == nil {
			c.metrics.RecordAttempt(c.provider.Name(), nil)
			return struct{}{}, nil
		}

		c.metrics.RecordAttempt(c.provider.Name(), err)
		if !IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		var tagged *Error
		if errors.As(err, &tagged) && tagged.RetryAfter > 0 {
			return struct{}{}, &backoff.RetryAfterError{Duration: tagged.RetryAfter}
		}
		return struct{}{}, err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retry.InitialDelay
	expo.RandomizationFactor = 0
	expo.Multiplier = c.retry.Multiplier
	expo.MaxInterval = c.retry.MaxDelay

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(c.retry.MaxAttempts),
		backoff.WithNotify(func(attemptErr error, nextDelay time.Duration) {
			for _, hook := range c.hooks {
				hook.OnRetryAttempt(ctx, attempt, attemptErr, nextDelay)
			}
		}),
	)

	totalDuration := time.Since(start)
	if err != nil {
		for _, hook := range c.hooks {
			hook.OnRetryFailure(ctx, err, attempt, totalDuration)
		}
		return err
	}
	for _, hook := range c.hooks {
		hook.OnRetrySuccess(ctx, attempt, totalDuration)
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, runID string, attempt uint, messages []Message, check func(payload []byte) error) error {
	c.logger.DebugContext(ctx, "requesting completion",
		"run_id", runID, "attempt", attempt, "max_attempts", c.retry.MaxAttempts,
		"provider", c.provider.Name(), "model", c.model, "messages", len(messages))

	response, err := c.provider.Complete(ctx, Request{
		Model:       c.model,
		Messages:    messages,
		Temperature: Temperature,
		JSONOnly:    true,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "completion attempt failed",
			"run_id", runID, "attempt", attempt, "kind", KindOf(err).String(), "error", err)
		return err
	}

	if err := check([]byte(response.Content)); err != nil {
		c.logger.DebugContext(ctx, "completion payload rejected",
			"run_id", runID, "attempt", attempt, "kind", KindOf(err).String(), "error", err)
		return err
	}

	c.logger.DebugContext(ctx, "completion accepted",
		"run_id", runID, "attempt", attempt,
		"input_tokens", response.Usage.InputTokens, "output_tokens", response.Usage.OutputTokens)
	return nil
}
