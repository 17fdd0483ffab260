package ai

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"natgpt/internal/config"
)

// Retry defaults: at most three calls in total, waiting 2s then 4s between them.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
)

// RetryPolicy exponential backoff for rate-limited calls.
type RetryPolicy struct {
	MaxAttempts int // total calls, including the first
	BaseDelay   time.Duration
}

// NewRetryPolicy reads cfg, falling back to the defaults for zero values.
func NewRetryPolicy(cfg config.RetryConfig) RetryPolicy {
	p := RetryPolicy{MaxAttempts: cfg.MaxAttempts, BaseDelay: cfg.BaseDelay}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	return p
}

// Delay returns the wait after failed attempt n (zero-based).
func (p RetryPolicy) Delay(n int) time.Duration {
	return p.BaseDelay << n
}

// Do calls fn until it succeeds, fails with something other than ErrRateLimited,
// MaxAttempts calls have been made or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	for attempt := 1; attempt < p.MaxAttempts && errors.Is(err, ErrRateLimited); attempt++ {
		delay := p.Delay(attempt - 1)
		log.Warn().Int("attempt", attempt).Dur("delay", delay).Msg("rate limited, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = fn(ctx)
	}
	return err
}
