package service

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-mirror-keeper/internal/adapter"
	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
)

// RetryPolicy retries remote calls that failed with
// [adapter.ErrTransientNetwork] using capped exponential backoff with jitter.
// Every other error is returned immediately.
type RetryPolicy struct {
	MinBackoff time.Duration
	MaxBackoff time.Duration
	// Attempts is the number of retries after the first call.
	Attempts uint64
}

// NewRetryPolicy builds the policy from the sync settings.
func NewRetryPolicy(cfg config.ClientSync) RetryPolicy {
	return RetryPolicy{
		MinBackoff: cfg.RetryMinBackoff,
		MaxBackoff: cfg.RetryMaxBackoff,
		Attempts:   cfg.RetryAttempts,
	}
}

func (p RetryPolicy) backoff() retry.Backoff {
	minBackoff := p.MinBackoff
	if minBackoff <= 0 {
		minBackoff = time.Millisecond
	}

	b := retry.NewExponential(minBackoff)
	b = retry.WithJitterPercent(20, b)
	if p.MaxBackoff > 0 {
		b = retry.WithCappedDuration(p.MaxBackoff, b)
	}

	return retry.WithMaxRetries(p.Attempts, b)
}

// Do runs fn until it succeeds, fails with a non-transient error, the retry
// budget is exhausted or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0

	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, adapter.ErrTransientNetwork) {
			logger.FromContext(ctx).Warn().Err(err).
				Str("op", op).
				Int("attempt", attempt).
				Msg("transient remote failure, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}
