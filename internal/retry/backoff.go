package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Config bounds push delivery attempts. MaxRetries counts every attempt,
// including the first.
type Config struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Multiplier    float64
	JitterEnabled bool
}

// DefaultConfig suits notification delivery: a few quick attempts.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		Multiplier:    2.0,
		JitterEnabled: true,
	}
}

func (c Config) exponential() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialDelay
	b.MaxInterval = c.MaxDelay
	if c.Multiplier >= 1 {
		b.Multiplier = c.Multiplier
	}
	b.RandomizationFactor = 0
	if c.JitterEnabled {
		b.RandomizationFactor = 0.5
	}
	// attempts are bounded by count, not by elapsed time
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (c Config) policy(ctx context.Context) backoff.BackOffContext {
	return backoff.WithContext(backoff.WithMaxRetries(c.exponential(), uint64(c.MaxRetries-1)), ctx)
}

// WithBackoff runs fn until it succeeds, cfg.MaxRetries attempts fail or ctx is done.
func WithBackoff(ctx context.Context, cfg Config, logger *zap.Logger, operation string, fn func() error) error {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("retry cancelled: %w", err)
	}

	attempts := 0
	err := backoff.RetryNotify(func() error {
		attempts++
		return fn()
	}, cfg.policy(ctx), func(err error, delay time.Duration) {
		logger.Warn("Operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempts),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Duration("retry_in", delay),
			zap.Error(err))
	})

	if err == nil {
		if attempts > 1 {
			logger.Info("Operation succeeded after retries",
				zap.String("operation", operation),
				zap.Int("attempts", attempts))
		}
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("retry cancelled: %w", ctxErr)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, err)
}
