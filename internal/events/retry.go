package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// RetryPolicy bounds retries for transient failures. Delay grows linearly:
// attempt n waits n*BaseDelay before running.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Retryable  func(error) bool
}

// Do runs fn, retrying per the policy. Non-retryable errors and exhausted
// attempts propagate the last error unchanged.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := p.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		timer := time.NewTimer(time.Duration(attempt+1) * baseDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// IsRateLimited reports whether err looks like a provider rate limit.
// A structured HTTP 429 is checked first; the text match is a fallback for
// providers that wrap the status into an opaque message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == 429 {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}
