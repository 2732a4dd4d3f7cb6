package model

import (
	"context"
	"log/slog"
	"time"
)

// RetryConfig bounds the completion retry policy. MaxAttempts counts
// the first attempt; a value of 3 allows two retries.
type RetryConfig struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
	}
}

// RetryHook observes the attempt lifecycle of one completion call.
type RetryHook interface {
	OnRetryAttempt(ctx context.Context, attempt uint, err error, nextDelay time.Duration)
	OnRetrySuccess(ctx context.Context, attempts uint, totalDuration time.Duration)
	OnRetryFailure(ctx context.Context, err error, attempts uint, totalDuration time.Duration)
}

// LogRetryHook traces attempt outcomes to a structured logger.
type LogRetryHook struct {
	Logger *slog.Logger
}

func (h *LogRetryHook) OnRetryAttempt(ctx context.Context, attempt uint, err error, nextDelay time.Duration) {
	h.Logger.WarnContext(ctx, "completion attempt failed",
		"attempt", attempt, "kind", KindOf(err).String(), "error", err, "next_delay", nextDelay)
}

func (h *LogRetryHook) OnRetrySuccess(ctx context.Context, attempts uint, totalDuration time.Duration) {
	h.Logger.DebugContext(ctx, "completion succeeded",
		"attempts", attempts, "total_duration", totalDuration)
}

func (h *LogRetryHook) OnRetryFailure(ctx context.Context, err error, attempts uint, totalDuration time.Duration) {
	h.Logger.ErrorContext(ctx, "completion failed after all attempts",
		"attempts", attempts, "kind", KindOf(err).String(), "error", err, "total_duration", totalDuration)
}
