package client

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"hoopslab/etl/internal/metrics"
)

// Policy describes how often and how patiently a failing call is retried
type Policy struct {
	// Attempts is the total number of calls, the first one included
	Attempts        int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultPolicy makes 4 attempts, waiting 1s, 2s, then 4s between them (capped at 8s)
func DefaultPolicy() Policy {
	return Policy{
		Attempts:        4,
		InitialInterval: time.Second,
		MaxInterval:     8 * time.Second,
		Multiplier:      2,
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = def.InitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	return p
}

func (p Policy) backOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.Multiplier = p.Multiplier
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()
	return backoff.WithMaxRetries(eb, uint64(p.Attempts-1))
}

// Delays returns the waits between consecutive attempts
func (p Policy) Delays() []time.Duration {
	p = p.normalized()
	b := p.backOff()
	b.Reset()

	var delays []time.Duration
	for {
		d := b.NextBackOff()
		if d == backoff.Stop {
			return delays
		}
		delays = append(delays, d)
	}
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Retry calls fn until it succeeds, returns a Permanent error, runs out of
// attempts, or ctx is done. The last error is returned wrapped with the
// operation name and attempt count.
func Retry[T any](ctx context.Context, p Policy, operation string, fn func(context.Context) (T, error)) (T, error) {
	p = p.normalized()
	attempts := 0

	b := backoff.WithContext(p.backOff(), ctx)
	result, err := backoff.RetryNotifyWithData[T](func() (T, error) {
		attempts++
		return fn(ctx)
	}, b, func(err error, wait time.Duration) {
		metrics.RecordRetry(operation)
		log.Warn().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempts).
			Int("max_attempts", p.Attempts).
			Dur("backoff", wait).
			Msg("Retrying after failure")
	})
	if err != nil {
		return result, fmt.Errorf("%s failed after %d attempt(s): %w", operation, attempts, err)
	}

	return result, nil
}
