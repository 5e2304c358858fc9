package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/resumeai/enhancer/internal/model"
)

// Ensure RetryNotifier implements model.Notifier.
var _ model.Notifier = (*RetryNotifier)(nil)

// RetryNotifier is a decorator that retries transient notification failures
// with exponential backoff and jitter before giving up.
type RetryNotifier struct {
	inner      model.Notifier
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
	after      func(time.Duration) <-chan time.Time
}

// NewRetryNotifier wraps a Notifier with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewRetryNotifier(inner model.Notifier, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryNotifier {
	return &RetryNotifier{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
		after:      time.After,
	}
}

// Notify delivers events, retrying on transient errors. Waiting between
// attempts ends as soon as ctx is done.
func (n *RetryNotifier) Notify(ctx context.Context, events []model.UpsellEvent) error {
	err := n.inner.Notify(ctx, events)
	if err == nil || !isRetryable(err) {
		return err
	}

	lastErr := err
	for attempt := 1; attempt <= n.maxRetries; attempt++ {
		delay := n.backoffDelay(attempt, lastErr)

		n.logger.Warn("retrying notification after transient error",
			"attempt", attempt,
			"max_retries", n.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-n.after(delay):
		}

		err = n.inner.Notify(ctx, events)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (n *RetryNotifier) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := n.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	// Apply ±30% jitter
	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation is final.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		// 429 and 5xx are transient; any other 4xx is not.
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	// Transport errors are retryable.
	return true
}
